package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

// Store persists the latest status of every service, keyed by slug
type Store interface {
	// UpsertStatus writes row, replacing any previous row for the slug
	UpsertStatus(ctx context.Context, row models.StatusRow) error
	GetStatus(ctx context.Context, slug string) (*models.StatusRow, error)
	// ListStatuses returns all rows ordered by slug
	ListStatuses(ctx context.Context) ([]models.StatusRow, error)
	// ListByStatus returns rows whose status is one of statuses, ordered by slug
	ListByStatus(ctx context.Context, statuses ...models.Status) ([]models.StatusRow, error)
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db != nil && db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
