// Package tasks implements the task operations: create, update,
// complete, delete, get and list. Every mutation runs inside a database
// transaction that also maintains the owner's priority sequence and
// appends to the task's change history.
package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
	"github.com/taskdeck/taskdeck/internal/store"
)

// TxRunner executes a function inside a database transaction.
// Abstracted from *sql.DB so the service can be exercised against
// in-memory stores in tests.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn store.TxFn) error
}

// DBTxRunner runs transactions against a *sql.DB using
// store.RunInTransaction.
type DBTxRunner struct {
	db *sql.DB
}

// NewDBTxRunner creates a TxRunner backed by the given database handle.
func NewDBTxRunner(db *sql.DB) *DBTxRunner {
	return &DBTxRunner{db: db}
}

// RunInTransaction implements TxRunner.
func (r *DBTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return store.RunInTransaction(ctx, r.db, fn)
}

// CreateInput carries the caller-supplied fields for a new task.
type CreateInput struct {
	Title       string
	Description string
	Priority    int
	Status      domain.TaskStatus
}

// UpdateInput carries the caller-supplied fields for a task update.
type UpdateInput struct {
	Title       string
	Description string
	Priority    int
	Status      domain.TaskStatus
	Completed   bool
}

// Service provides task operations scoped to an authenticated caller.
// All mutations are transactional so the per-user dense priority
// invariant (priorities are exactly {1..N}) holds after every operation.
type Service struct {
	runner  TxRunner
	tasks   store.TaskStore
	history store.HistoryStore
	logger  *slog.Logger
}

// NewService creates a new task Service.
// It returns an error if any of the required dependencies are nil.
func NewService(
	runner TxRunner,
	tasks store.TaskStore,
	history store.HistoryStore,
	logger *slog.Logger,
) (*Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("%w: runner cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, fmt.Errorf("%w: task store cannot be nil", domain.ErrValidation)
	}
	if history == nil {
		return nil, fmt.Errorf("%w: history store cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		runner:  runner,
		tasks:   tasks,
		history: history,
		logger:  logger.With(slog.String("component", "task_service")),
	}, nil
}

// Create validates the input, reindexes the owner's tasks to make room
// at the requested priority, and persists the new task.
//
// A requested priority below 1 is a validation error. A requested
// priority above count+1 is clamped to count+1 (append at end): tasks
// at or after the effective priority shift up by one, preserving their
// relative order, and the new task takes the slot.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if input.Priority < 1 {
		return nil, fmt.Errorf("%w: requested priority %d", domain.ErrInvalidPriority, input.Priority)
	}

	var created *domain.Task
	err := s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		// Serialize with other mutations for this user: the count below
		// must not race a concurrent insert or delete.
		if err := txTasks.LockUser(ctx, userID); err != nil {
			return err
		}

		count, err := txTasks.CountForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}

		priority := input.Priority
		if priority > count+1 {
			priority = count + 1
		}

		if err := txTasks.ShiftUpFrom(ctx, userID, priority, uuid.Nil); err != nil {
			return fmt.Errorf("failed to shift priorities: %w", err)
		}

		task, err := domain.NewTask(userID, input.Title, input.Description, priority, input.Status)
		if err != nil {
			return err
		}

		if err := txTasks.Create(ctx, task); err != nil {
			return err
		}

		change, err := domain.NewTaskChange(task.ID, userID, domain.ChangeActionCreated,
			fmt.Sprintf("created %q with priority %d", task.Title, task.Priority))
		if err != nil {
			return err
		}
		if err := txHistory.Record(ctx, change); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}

		created = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("priority", created.Priority))
	return created, nil
}

// Update modifies a task owned by the caller. Returns
// store.ErrTaskNotFound if the task does not exist or belongs to
// another user; the underlying record is then unchanged.
//
// When the priority changes, the owner's other tasks are reindexed in
// two steps inside the transaction: close the gap left at the old rank,
// then open one at the new rank. The task itself is excluded from both
// shifts.
func (s *Service) Update(ctx context.Context, taskID, userID uuid.UUID, input UpdateInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if input.Priority < 1 {
		return nil, fmt.Errorf("%w: requested priority %d", domain.ErrInvalidPriority, input.Priority)
	}

	var updated *domain.Task
	err := s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		if err := txTasks.LockUser(ctx, userID); err != nil {
			return err
		}

		task, err := txTasks.GetForUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		count, err := txTasks.CountForUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}

		// The task already holds a slot, so the highest reachable rank
		// is count, not count+1.
		priority := input.Priority
		if priority > count {
			priority = count
		}

		if priority != task.Priority {
			if err := txTasks.ShiftDownAfter(ctx, userID, task.Priority, task.ID); err != nil {
				return fmt.Errorf("failed to close priority gap: %w", err)
			}
			if err := txTasks.ShiftUpFrom(ctx, userID, priority, task.ID); err != nil {
				return fmt.Errorf("failed to open priority slot: %w", err)
			}
		}

		detail := describeUpdate(task, input, priority)

		task.Title = input.Title
		task.Description = input.Description
		task.Priority = priority
		task.Status = input.Status
		task.Completed = input.Completed
		task.UpdatedAt = nowUTC()

		if err := txTasks.Update(ctx, task); err != nil {
			return err
		}

		change, err := domain.NewTaskChange(task.ID, userID, domain.ChangeActionUpdated, detail)
		if err != nil {
			return err
		}
		if err := txHistory.Record(ctx, change); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}

		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("priority", updated.Priority))
	return updated, nil
}

// Complete marks a task as completed. The owner's priority sequence is
// not altered. Returns store.ErrTaskNotFound if the task does not exist
// or belongs to another user.
func (s *Service) Complete(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var completed *domain.Task
	err := s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		task, err := txTasks.GetForUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := txTasks.SetCompleted(ctx, taskID, userID, true); err != nil {
			return err
		}
		task.MarkCompleted()

		change, err := domain.NewTaskChange(task.ID, userID, domain.ChangeActionCompleted,
			fmt.Sprintf("completed %q", task.Title))
		if err != nil {
			return err
		}
		if err := txHistory.Record(ctx, change); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}

		completed = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("task completed",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return completed, nil
}

// Delete removes a task owned by the caller and shifts every task with
// a higher priority down by one to close the gap. Returns
// store.ErrTaskNotFound if the task does not exist or belongs to
// another user.
func (s *Service) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.runner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		txHistory := s.history.WithTx(tx)

		if err := txTasks.LockUser(ctx, userID); err != nil {
			return err
		}

		task, err := txTasks.GetForUser(ctx, taskID, userID)
		if err != nil {
			return err
		}

		if err := txTasks.Delete(ctx, taskID, userID); err != nil {
			return err
		}

		if err := txTasks.ShiftDownAfter(ctx, userID, task.Priority, uuid.Nil); err != nil {
			return fmt.Errorf("failed to close priority gap: %w", err)
		}

		change, err := domain.NewTaskChange(task.ID, userID, domain.ChangeActionDeleted,
			fmt.Sprintf("deleted %q (was priority %d)", task.Title, task.Priority))
		if err != nil {
			return err
		}
		if err := txHistory.Record(ctx, change); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// Get retrieves a task owned by the caller.
func (s *Service) Get(ctx context.Context, taskID, userID uuid.UUID) (*domain.Task, error) {
	return s.tasks.GetForUser(ctx, taskID, userID)
}

// List returns tasks matching the filter, ordered by priority.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter store.ListFilter) ([]*domain.Task, error) {
	return s.tasks.List(ctx, userID, filter)
}

// History returns the change entries recorded against the caller's
// tasks, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID) ([]*domain.TaskChange, error) {
	return s.history.ListByUser(ctx, userID)
}

// TaskHistory returns the change entries for one of the caller's tasks.
// Returns store.ErrTaskNotFound if the task is not the caller's.
func (s *Service) TaskHistory(ctx context.Context, taskID, userID uuid.UUID) ([]*domain.TaskChange, error) {
	if _, err := s.tasks.GetForUser(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.history.ListByTask(ctx, taskID)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// describeUpdate summarizes which fields an update touched, for the
// history trail.
func describeUpdate(old *domain.Task, input UpdateInput, priority int) string {
	var parts []string
	if old.Title != input.Title {
		parts = append(parts, fmt.Sprintf("title to %q", input.Title))
	}
	if old.Description != input.Description {
		parts = append(parts, "description")
	}
	if old.Priority != priority {
		parts = append(parts, fmt.Sprintf("priority %d to %d", old.Priority, priority))
	}
	if old.Status != input.Status {
		parts = append(parts, fmt.Sprintf("status to %q", input.Status))
	}
	if old.Completed != input.Completed {
		parts = append(parts, fmt.Sprintf("completed to %t", input.Completed))
	}
	if len(parts) == 0 {
		return "updated with no field changes"
	}
	return "changed " + strings.Join(parts, ", ")
}
