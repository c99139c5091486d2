package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/domain"
)

// HistoryStore defines the interface for task change history persistence.
type HistoryStore interface {
	// Record appends a change entry to a task's history.
	// Returns validation errors from the domain TaskChange if data is invalid.
	Record(ctx context.Context, change *domain.TaskChange) error

	// ListByTask returns a task's change entries, newest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskChange, error)

	// ListByUser returns every change entry recorded against the given
	// user's tasks, newest first. Backs the history API endpoint.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.TaskChange, error)

	// WithTx returns a new HistoryStore instance that uses the provided
	// transaction, so a change row commits atomically with the mutation
	// it records.
	WithTx(tx *sql.Tx) HistoryStore
}
