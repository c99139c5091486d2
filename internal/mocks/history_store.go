package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/store"
)

// MockHistoryStore implements store.HistoryStore for testing.
type MockHistoryStore struct {
	mu sync.Mutex

	// RecordFn overrides Record when set.
	RecordFn func(ctx context.Context, change *domain.TaskChange) error

	// Changes holds every recorded entry in insertion order.
	Changes []*domain.TaskChange
}

// NewMockHistoryStore creates a new mock store with initialized defaults.
func NewMockHistoryStore() *MockHistoryStore {
	return &MockHistoryStore{}
}

// Ensure MockHistoryStore implements store.HistoryStore
var _ store.HistoryStore = (*MockHistoryStore)(nil)

// WithTx returns the store itself; the mock has no transaction scoping.
func (m *MockHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return m
}

// Record implements the HistoryStore interface.
func (m *MockHistoryStore) Record(ctx context.Context, change *domain.TaskChange) error {
	if m.RecordFn != nil {
		return m.RecordFn(ctx, change)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *change
	m.Changes = append(m.Changes, &copied)
	return nil
}

// ListByTask implements the HistoryStore interface.
func (m *MockHistoryStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changes := make([]*domain.TaskChange, 0)
	for i := len(m.Changes) - 1; i >= 0; i-- {
		if m.Changes[i].TaskID == taskID {
			copied := *m.Changes[i]
			changes = append(changes, &copied)
		}
	}
	sortNewestFirst(changes)
	return changes, nil
}

// ListByUser implements the HistoryStore interface.
func (m *MockHistoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.TaskChange, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	changes := make([]*domain.TaskChange, 0)
	for i := len(m.Changes) - 1; i >= 0; i-- {
		if m.Changes[i].UserID == userID {
			copied := *m.Changes[i]
			changes = append(changes, &copied)
		}
	}
	sortNewestFirst(changes)
	return changes, nil
}

// sortNewestFirst orders by CreatedAt descending. The input is already
// in reverse insertion order, so entries with equal timestamps keep the
// most recent first.
func sortNewestFirst(changes []*domain.TaskChange) {
	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].CreatedAt.After(changes[j].CreatedAt)
	})
}
