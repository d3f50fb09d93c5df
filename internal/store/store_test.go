package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

type cfgDB struct{ configured bool }

func (d *cfgDB) Exec(ctx context.Context, sql string, args ...any) error { return nil }
func (d *cfgDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (d *cfgDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (d *cfgDB) Health(ctx context.Context) error                              { return nil }
func (d *cfgDB) IsConfigured() bool                                            { return d.configured }

func TestNew_ReturnsPostgresWhenConfigured(t *testing.T) {
	s := New(&cfgDB{configured: true})
	if _, ok := s.(*PostgresStore); !ok {
		t.Fatalf("expected PostgresStore when db is configured, got %T", s)
	}
}

func TestNew_ReturnsInMemoryWhenNotConfigured(t *testing.T) {
	s := New(&cfgDB{configured: false})
	if _, ok := s.(*InMemoryStore); !ok {
		t.Fatalf("expected InMemoryStore when db is not configured, got %T", s)
	}
}

func TestNew_NilDatabase(t *testing.T) {
	if _, ok := New(nil).(*InMemoryStore); !ok {
		t.Fatal("expected InMemoryStore for nil database")
	}
}
