package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/domain"
)

// ListFilter selects which tasks a List call returns.
type ListFilter string

// Supported list filters.
const (
	// FilterMine returns the caller's pending (not completed) tasks.
	FilterMine ListFilter = "mine"

	// FilterCompletedMine returns the caller's completed tasks.
	FilterCompletedMine ListFilter = "completed-mine"

	// FilterAllUsers returns every user's tasks, pending and completed.
	FilterAllUsers ListFilter = "all-users"
)

// TaskStore defines the interface for task data persistence.
//
// The shift primitives (ShiftUpFrom, ShiftDownAfter) are deliberately
// dumb single-statement operations; the task service composes them with
// CountForUser inside a transaction to keep each user's priority set
// dense. They never cross user boundaries.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns validation errors from the domain Task if data is invalid.
	// Returns ErrInvalidEntity if the owning user does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID regardless of owner.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetForUser retrieves a task by ID scoped to the given owner.
	// Returns ErrTaskNotFound if the task does not exist or belongs to
	// a different user.
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error)

	// Update modifies an existing task's fields.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// SetCompleted flips the completed flag of the given task without
	// touching its priority. Returns ErrTaskNotFound if the task does
	// not exist or belongs to a different user.
	SetCompleted(ctx context.Context, id, userID uuid.UUID, completed bool) error

	// Delete removes a task owned by the given user.
	// Returns ErrTaskNotFound if the task does not exist or belongs to
	// a different user.
	Delete(ctx context.Context, id, userID uuid.UUID) error

	// List returns tasks matching the filter. Results are ordered by
	// ascending priority; the all-users filter orders by owner first.
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Task, error)

	// LockUser takes an exclusive lock on the user's task set, held
	// until the surrounding transaction ends. Every reindexing mutation
	// calls it first so two concurrent mutations for the same user
	// serialize instead of counting and shifting against snapshots that
	// cannot see each other's rows.
	LockUser(ctx context.Context, userID uuid.UUID) error

	// CountForUser returns the number of tasks owned by the user.
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)

	// ShiftUpFrom increments by one the priority of every task owned by
	// the user whose priority is >= from, excluding the task with ID
	// exclude (pass uuid.Nil to exclude nothing). Relative order among
	// the shifted tasks is preserved.
	ShiftUpFrom(ctx context.Context, userID uuid.UUID, from int, exclude uuid.UUID) error

	// ShiftDownAfter decrements by one the priority of every task owned
	// by the user whose priority is > after, excluding the task with ID
	// exclude (pass uuid.Nil to exclude nothing).
	ShiftDownAfter(ctx context.Context, userID uuid.UUID, after int, exclude uuid.UUID) error

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically the task service via RunInTransaction).
	WithTx(tx *sql.Tx) TaskStore
}
