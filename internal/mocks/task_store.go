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

// MockTaskStore implements store.TaskStore for testing with an
// in-memory map. The shift primitives behave like their SQL
// counterparts so service tests can verify the dense-priority
// invariant end to end.
type MockTaskStore struct {
	mu sync.Mutex

	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, task *domain.Task) error
	GetForUserFn func(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)
	UpdateFn     func(ctx context.Context, task *domain.Task) error
	DeleteFn     func(ctx context.Context, id, userID uuid.UUID) error
	ListFn       func(ctx context.Context, userID uuid.UUID, filter store.ListFilter) ([]*domain.Task, error)
	LockUserFn   func(ctx context.Context, userID uuid.UUID) error

	// Tasks holds the backing data, keyed by task ID.
	Tasks map[uuid.UUID]*domain.Task

	// Locked records every LockUser call in order.
	Locked []uuid.UUID
}

// NewMockTaskStore creates a new mock store with initialized defaults.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks: make(map[uuid.UUID]*domain.Task),
	}
}

// Ensure MockTaskStore implements store.TaskStore
var _ store.TaskStore = (*MockTaskStore)(nil)

// WithTx returns the store itself; the mock has no transaction scoping.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// Create implements the TaskStore interface.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// GetByID implements the TaskStore interface.
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.Tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// GetForUser implements the TaskStore interface.
func (m *MockTaskStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	if m.GetForUserFn != nil {
		return m.GetForUserFn(ctx, id, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.Tasks[id]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// Update implements the TaskStore interface.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.Tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	copied := *task
	m.Tasks[task.ID] = &copied
	return nil
}

// SetCompleted implements the TaskStore interface.
func (m *MockTaskStore) SetCompleted(ctx context.Context, id, userID uuid.UUID, completed bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.Tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	task.Completed = completed
	return nil
}

// Delete implements the TaskStore interface.
func (m *MockTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.Tasks[id]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	return nil
}

// List implements the TaskStore interface.
func (m *MockTaskStore) List(ctx context.Context, userID uuid.UUID, filter store.ListFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, filter)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := make([]*domain.Task, 0)
	for _, task := range m.Tasks {
		switch filter {
		case store.FilterMine:
			if task.UserID != userID || task.Completed {
				continue
			}
		case store.FilterCompletedMine:
			if task.UserID != userID || !task.Completed {
				continue
			}
		case store.FilterAllUsers:
			// keep everything
		}
		copied := *task
		tasks = append(tasks, &copied)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].UserID != tasks[j].UserID {
			return tasks[i].UserID.String() < tasks[j].UserID.String()
		}
		return tasks[i].Priority < tasks[j].Priority
	})
	return tasks, nil
}

// LockUser implements the TaskStore interface. The in-memory store
// needs no real lock; calls are recorded so tests can assert that
// mutations take it.
func (m *MockTaskStore) LockUser(ctx context.Context, userID uuid.UUID) error {
	if m.LockUserFn != nil {
		return m.LockUserFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Locked = append(m.Locked, userID)
	return nil
}

// CountForUser implements the TaskStore interface.
func (m *MockTaskStore) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, task := range m.Tasks {
		if task.UserID == userID {
			count++
		}
	}
	return count, nil
}

// ShiftUpFrom implements the TaskStore interface.
func (m *MockTaskStore) ShiftUpFrom(ctx context.Context, userID uuid.UUID, from int, exclude uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, task := range m.Tasks {
		if task.UserID == userID && task.ID != exclude && task.Priority >= from {
			task.Priority++
		}
	}
	return nil
}

// ShiftDownAfter implements the TaskStore interface.
func (m *MockTaskStore) ShiftDownAfter(ctx context.Context, userID uuid.UUID, after int, exclude uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, task := range m.Tasks {
		if task.UserID == userID && task.ID != exclude && task.Priority > after {
			task.Priority--
		}
	}
	return nil
}

// PrioritiesForUser returns the user's priorities in ascending order.
// Test helper for asserting the dense-sequence invariant.
func (m *MockTaskStore) PrioritiesForUser(userID uuid.UUID) []int {
	m.mu.Lock()
	defer m.mu.Unlock()

	priorities := make([]int, 0)
	for _, task := range m.Tasks {
		if task.UserID == userID {
			priorities = append(priorities, task.Priority)
		}
	}
	sort.Ints(priorities)
	return priorities
}
