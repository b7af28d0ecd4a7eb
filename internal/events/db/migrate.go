package db

import (
	"context"

	"github.com/uptrace/bun"

	"events-app/internal/models"
)

// EnsureSchema creates the events table when it does not exist yet. The
// MySQL variant relies on this at startup; the Postgres deployment runs the
// versioned SQL migrations instead.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*models.Event)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// ResetSchema drops and recreates the events table. Test fixtures only.
func ResetSchema(ctx context.Context, db *bun.DB) error {
	return db.ResetModel(ctx, (*models.Event)(nil))
}
