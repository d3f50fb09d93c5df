package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rajasatyajit/StatusAggregator/internal/models"
)

// InMemoryStore implements Store using in-memory storage
type InMemoryStore struct {
	mu   sync.RWMutex
	rows map[string]models.StatusRow
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		rows: make(map[string]models.StatusRow),
	}
}

// UpsertStatus stores the row in memory
func (s *InMemoryStore) UpsertStatus(ctx context.Context, row models.StatusRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row.LastIncident != nil {
		t := *row.LastIncident
		row.LastIncident = &t
	}
	s.rows[row.ServiceSlug] = row
	return nil
}

// GetStatus returns the row for slug, or nil when none exists
func (s *InMemoryStore) GetStatus(ctx context.Context, slug string) (*models.StatusRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if row, exists := s.rows[slug]; exists {
		return &row, nil
	}
	return nil, nil
}

// ListStatuses returns every row ordered by slug
func (s *InMemoryStore) ListStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return s.list(func(models.StatusRow) bool { return true }), nil
}

// ListByStatus returns the rows currently in one of statuses
func (s *InMemoryStore) ListByStatus(ctx context.Context, statuses ...models.Status) ([]models.StatusRow, error) {
	want := make(map[models.Status]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	return s.list(func(r models.StatusRow) bool { return want[r.Status] }), nil
}

func (s *InMemoryStore) list(keep func(models.StatusRow) bool) []models.StatusRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.StatusRow, 0, len(s.rows))
	for _, row := range s.rows {
		if keep(row) {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ServiceSlug < result[j].ServiceSlug
	})
	return result
}

// Health always returns nil for in-memory store
func (s *InMemoryStore) Health(ctx context.Context) error {
	return nil
}
