package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

const selectColumns = `SELECT service_slug, status, last_incident, updated_at FROM service_status`

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

// UpsertStatus inserts or replaces the row for a slug
func (s *PostgresStore) UpsertStatus(ctx context.Context, row models.StatusRow) error {
	query := `
		INSERT INTO service_status (service_slug, status, last_incident, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (service_slug) DO UPDATE SET
			status = EXCLUDED.status,
			last_incident = EXCLUDED.last_incident,
			updated_at = EXCLUDED.updated_at
	`

	updatedAt := row.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	err := s.db.Exec(ctx, query, row.ServiceSlug, string(row.Status), row.LastIncident, updatedAt)
	if err != nil {
		return apperrors.DatabaseError{Operation: "upsert status " + row.ServiceSlug, Err: err}
	}
	return nil
}

// GetStatus returns the row for slug, or nil when none exists
func (s *PostgresStore) GetStatus(ctx context.Context, slug string) (*models.StatusRow, error) {
	row := s.db.QueryRow(ctx, selectColumns+` WHERE service_slug = $1`, slug)
	if row == nil {
		return nil, fmt.Errorf("invalid row type")
	}

	r, err := scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.DatabaseError{Operation: "get status", Err: err}
	}
	return &r, nil
}

// ListStatuses returns every row ordered by slug
func (s *PostgresStore) ListStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return s.query(ctx, "list statuses", selectColumns+` ORDER BY service_slug`)
}

// ListByStatus returns the rows currently in one of statuses
func (s *PostgresStore) ListByStatus(ctx context.Context, statuses ...models.Status) ([]models.StatusRow, error) {
	if len(statuses) == 0 {
		return []models.StatusRow{}, nil
	}
	values := make([]string, len(statuses))
	for i, st := range statuses {
		values[i] = string(st)
	}
	return s.query(ctx, "list by status",
		selectColumns+` WHERE status = ANY($1) ORDER BY service_slug`, values)
}

// Health delegates to the database
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}

func (s *PostgresStore) query(ctx context.Context, op, sql string, args ...any) ([]models.StatusRow, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.DatabaseError{Operation: op, Err: err}
	}
	if rows == nil {
		return nil, fmt.Errorf("invalid rows type")
	}
	defer rows.Close()

	result := []models.StatusRow{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, apperrors.DatabaseError{Operation: op, Err: fmt.Errorf("scan: %w", err)}
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError{Operation: op, Err: err}
	}
	return result, nil
}

func scanRow(row pgx.Row) (models.StatusRow, error) {
	var (
		r      models.StatusRow
		status string
		last   *time.Time
	)
	if err := row.Scan(&r.ServiceSlug, &status, &last, &r.UpdatedAt); err != nil {
		return models.StatusRow{}, err
	}
	r.Status = models.ParseStatus(status)
	if last != nil {
		t := last.UTC()
		r.LastIncident = &t
	}
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r, nil
}
