package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"events-app/internal/events"
	"events-app/internal/models"
)

// DB is the ORM-driven record store, built on the bun query builder.
type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("name", "description", "start_date", "end_date", "image_url").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListEvents returns one page of matching rows plus the total match count.
// SortColumn and SortOrder arrive pre-resolved through the service allow-list.
func (d *DB) ListEvents(ctx context.Context, params events.ListParams) ([]models.Event, int, error) {
	var rows []models.Event
	q := d.Bun.NewSelect().Model(&rows)
	if params.Search != "" {
		q = q.Where("name LIKE ?", "%"+params.Search+"%")
	}
	count, err := q.
		OrderExpr("? ?", bun.Ident(params.SortColumn), bun.Safe(params.SortOrder)).
		Limit(params.Limit).
		Offset(params.Offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return rows, count, nil
}
