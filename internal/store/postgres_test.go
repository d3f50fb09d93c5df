package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "github.com/rajasatyajit/StatusAggregator/internal/errors"
	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

type mockDB struct {
	ExecFn     func(ctx context.Context, sql string, args ...any) error
	QueryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	HealthFn   func(ctx context.Context) error
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) error {
	if m.ExecFn != nil {
		return m.ExecFn(ctx, sql, args...)
	}
	return nil
}
func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, sql, args...)
	}
	return nil, nil
}
func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFn != nil {
		return m.QueryRowFn(ctx, sql, args...)
	}
	return nil
}
func (m *mockDB) Health(ctx context.Context) error {
	if m.HealthFn != nil {
		return m.HealthFn(ctx)
	}
	return nil
}
func (m *mockDB) IsConfigured() bool { return true }

// fakeRow scans a fixed StatusRow or returns err
type fakeRow struct {
	row models.StatusRow
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.row, dest)
}

func scanInto(row models.StatusRow, dest []any) error {
	if len(dest) != 4 {
		return errors.New("unexpected column count")
	}
	*dest[0].(*string) = row.ServiceSlug
	*dest[1].(*string) = string(row.Status)
	*dest[2].(**time.Time) = row.LastIncident
	*dest[3].(*time.Time) = row.UpdatedAt
	return nil
}

// fakeRows iterates a fixed slice of rows
type fakeRows struct {
	rows   []models.StatusRow
	idx    int
	err    error
	closed bool
}

func (r *fakeRows) Close()                                       { r.closed = true }
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}
func (r *fakeRows) Scan(dest ...any) error { return scanInto(r.rows[r.idx-1], dest) }
func (r *fakeRows) Values() ([]any, error) { return nil, nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func TestPostgresStore_UpsertStatus(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	db := &mockDB{ExecFn: func(ctx context.Context, sql string, args ...any) error {
		gotSQL, gotArgs = sql, args
		return nil
	}}

	updated := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	row := models.StatusRow{ServiceSlug: "openai", Status: models.StatusIncident, LastIncident: ts(11), UpdatedAt: updated}
	if err := NewPostgresStore(db).UpsertStatus(context.Background(), row); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(gotSQL, "INSERT INTO service_status") || !strings.Contains(gotSQL, "ON CONFLICT (service_slug)") {
		t.Errorf("unexpected SQL: %s", gotSQL)
	}
	if len(gotArgs) != 4 || gotArgs[0] != "openai" || gotArgs[1] != "incident" || gotArgs[3] != updated {
		t.Errorf("unexpected args: %v", gotArgs)
	}
}

func TestPostgresStore_UpsertStatus_Error(t *testing.T) {
	db := &mockDB{ExecFn: func(ctx context.Context, sql string, args ...any) error { return errors.New("exec failure") }}

	err := NewPostgresStore(db).UpsertStatus(context.Background(), models.StatusRow{ServiceSlug: "github"})
	var dbErr apperrors.DatabaseError
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected DatabaseError, got %v", err)
	}
	if !strings.Contains(dbErr.Operation, "github") {
		t.Errorf("operation should name the slug: %s", dbErr.Operation)
	}
}

func TestPostgresStore_ListStatuses(t *testing.T) {
	rows := &fakeRows{rows: []models.StatusRow{
		{ServiceSlug: "github", Status: "incident", LastIncident: ts(9), UpdatedAt: *ts(10)},
		{ServiceSlug: "slack", Status: "bogus", UpdatedAt: *ts(10)},
	}}
	db := &mockDB{QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		if !strings.Contains(sql, "ORDER BY service_slug") {
			t.Errorf("unexpected SQL: %s", sql)
		}
		return rows, nil
	}}

	got, err := NewPostgresStore(db).ListStatuses(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Status != models.StatusIncident || got[0].LastIncident == nil {
		t.Errorf("unexpected first row %+v", got[0])
	}
	if got[1].Status != models.StatusUnknown {
		t.Errorf("unrecognized stored status should read as unknown, got %s", got[1].Status)
	}
	if !rows.closed {
		t.Error("rows were not closed")
	}
}

func TestPostgresStore_ListByStatus(t *testing.T) {
	var gotArgs []any
	db := &mockDB{QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
		gotArgs = args
		if !strings.Contains(sql, "status = ANY($1)") {
			t.Errorf("unexpected SQL: %s", sql)
		}
		return &fakeRows{}, nil
	}}
	s := NewPostgresStore(db)

	got, err := s.ListByStatus(context.Background(), models.StatusIncident, models.StatusOutage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	vals, ok := gotArgs[0].([]string)
	if !ok || len(vals) != 2 || vals[0] != "incident" || vals[1] != "outage" {
		t.Errorf("unexpected args %v", gotArgs)
	}

	empty, err := s.ListByStatus(context.Background())
	if err != nil || len(empty) != 0 {
		t.Errorf("empty filter should short-circuit, got %v, %v", empty, err)
	}
}

func TestPostgresStore_Query_Errors(t *testing.T) {
	t.Run("query error wrapped", func(t *testing.T) {
		db := &mockDB{QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, errors.New("db error")
		}}
		_, err := NewPostgresStore(db).ListStatuses(context.Background())
		if err == nil || !strings.Contains(err.Error(), "list statuses") {
			t.Errorf("wrap missing: %v", err)
		}
	})

	t.Run("nil rows", func(t *testing.T) {
		_, err := NewPostgresStore(&mockDB{}).ListStatuses(context.Background())
		if err == nil || !strings.Contains(err.Error(), "invalid rows type") {
			t.Errorf("got %v", err)
		}
	})

	t.Run("iteration error", func(t *testing.T) {
		db := &mockDB{QueryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return &fakeRows{err: errors.New("conn reset")}, nil
		}}
		if _, err := NewPostgresStore(db).ListStatuses(context.Background()); err == nil {
			t.Error("expected rows.Err to surface")
		}
	})
}

func TestPostgresStore_GetStatus(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := &mockDB{QueryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return fakeRow{row: models.StatusRow{ServiceSlug: "vercel", Status: "maintenance", UpdatedAt: *ts(3)}}
		}}
		got, err := NewPostgresStore(db).GetStatus(context.Background(), "vercel")
		if err != nil || got == nil || got.Status != models.StatusMaintenance {
			t.Fatalf("unexpected result %+v, %v", got, err)
		}
	})

	t.Run("no rows", func(t *testing.T) {
		db := &mockDB{QueryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return fakeRow{err: pgx.ErrNoRows}
		}}
		got, err := NewPostgresStore(db).GetStatus(context.Background(), "missing")
		if err != nil || got != nil {
			t.Fatalf("expected nil, nil; got %+v, %v", got, err)
		}
	})

	t.Run("nil row", func(t *testing.T) {
		_, err := NewPostgresStore(&mockDB{}).GetStatus(context.Background(), "x")
		if err == nil || !strings.Contains(err.Error(), "invalid row type") {
			t.Errorf("got %v", err)
		}
	})
}
