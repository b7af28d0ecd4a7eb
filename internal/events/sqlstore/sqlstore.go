// Package sqlstore is the raw-SQL record store. It shares the service layer
// and the Store contract with the ORM variant but issues handwritten
// statements, the way the original deployment talked to MySQL.
package sqlstore

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"events-app/internal/events"
	"events-app/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	res, err := d.Bun.NewRaw(
		"INSERT INTO events (name, description, start_date, end_date, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.Name, event.Description, event.StartDate, event.EndDate, event.ImageURL, event.CreatedAt,
	).Exec(ctx)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// Reload so the caller sees exactly what the store persisted.
	inserted, err := d.GetEventByID(ctx, id)
	if err != nil {
		return err
	}
	*event = *inserted
	return nil
}

func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewRaw(
		"SELECT id, name, description, start_date, end_date, image_url, created_at FROM events WHERE id = ?",
		id,
	).Scan(ctx, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewRaw(
		"UPDATE events SET name = ?, description = ?, start_date = ?, end_date = ?, image_url = ? WHERE id = ?",
		event.Name, event.Description, event.StartDate, event.EndDate, event.ImageURL, event.ID,
	).Exec(ctx)
	return err
}

func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	_, err := d.Bun.NewRaw("DELETE FROM events WHERE id = ?", id).Exec(ctx)
	return err
}

func (d *DB) ListEvents(ctx context.Context, params events.ListParams) ([]models.Event, int, error) {
	pattern := "%" + params.Search + "%"

	var total int
	if err := d.Bun.NewRaw(
		"SELECT COUNT(*) FROM events WHERE name LIKE ?", pattern,
	).Scan(ctx, &total); err != nil {
		return nil, 0, err
	}

	var rows []models.Event
	err := d.Bun.NewRaw(
		"SELECT id, name, description, start_date, end_date, image_url, created_at FROM events WHERE name LIKE ? ORDER BY ? ? LIMIT ? OFFSET ?",
		pattern, bun.Ident(params.SortColumn), bun.Safe(params.SortOrder), params.Limit, params.Offset,
	).Scan(ctx, &rows)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
