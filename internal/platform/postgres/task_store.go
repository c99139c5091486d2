package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
	"github.com/taskdeck/taskdeck/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the user ID doesn't exist
// (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, user_id, title, description, priority, status, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Completed,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("user_id", task.UserID.String()))
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, task.UserID)
		}

		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()))
		return store.NewStoreError("task", "create", "insert failed", err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()),
		slog.Int("priority", task.Priority))
	return nil
}

const taskColumns = `id, user_id, title, description, priority, status, completed, created_at, updated_at`

// scanTask scans a single task row into a domain.Task.
func scanTask(row interface{ Scan(dest ...any) error }) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "query failed", err)
	}

	return task, nil
}

// GetForUser implements store.TaskStore.GetForUser
// Returns store.ErrTaskNotFound if the task does not exist or belongs
// to a different user; callers cannot distinguish the two cases.
func (s *PostgresTaskStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task for user",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("task", "get", "query failed", err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, priority = $3, status = $4, completed = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Priority,
		task.Status,
		task.Completed,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "update failed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.Int("priority", task.Priority))
	return nil
}

// SetCompleted implements store.TaskStore.SetCompleted
// The task's priority is deliberately left untouched.
func (s *PostgresTaskStore) SetCompleted(ctx context.Context, id, userID uuid.UUID, completed bool) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET completed = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`
	result, err := s.db.ExecContext(ctx, query, completed, id, userID)
	if err != nil {
		log.Error("failed to set task completed flag",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "complete", "update failed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task completion updated",
		slog.String("task_id", id.String()),
		slog.Bool("completed", completed))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist or belongs
// to a different user.
func (s *PostgresTaskStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "delete failed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.ListFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		query string
		args  []any
	)

	switch filter {
	case store.FilterMine:
		query = `SELECT ` + taskColumns + ` FROM tasks
			WHERE user_id = $1 AND completed = FALSE
			ORDER BY priority ASC`
		args = []any{userID}
	case store.FilterCompletedMine:
		query = `SELECT ` + taskColumns + ` FROM tasks
			WHERE user_id = $1 AND completed = TRUE
			ORDER BY priority ASC`
		args = []any{userID}
	case store.FilterAllUsers:
		query = `SELECT ` + taskColumns + ` FROM tasks
			ORDER BY user_id, priority ASC`
	default:
		return nil, fmt.Errorf("%w: unknown list filter %q", store.ErrInvalidEntity, filter)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("filter", string(filter)))
		return nil, store.NewStoreError("task", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

// LockUser implements store.TaskStore.LockUser
// The advisory lock keys on a hash of the user ID and is released when
// the surrounding transaction commits or rolls back. Without it, a
// concurrent create and delete for the same user each commit against a
// snapshot that cannot see the other's rows and leave a gap in the
// priority sequence.
func (s *PostgresTaskStore) LockUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, userID)
	if err != nil {
		log.Error("failed to lock user task set",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return store.NewStoreError("task", "lock", "advisory lock failed", err)
	}
	return nil
}

// CountForUser implements store.TaskStore.CountForUser
func (s *PostgresTaskStore) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, store.NewStoreError("task", "count", "query failed", err)
	}
	return count, nil
}

// ShiftUpFrom implements store.TaskStore.ShiftUpFrom
// Must run inside the same transaction as the insert/update it makes
// room for; the (user_id, priority) unique constraint is deferred so
// the intermediate state is legal.
func (s *PostgresTaskStore) ShiftUpFrom(
	ctx context.Context,
	userID uuid.UUID,
	from int,
	exclude uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET priority = priority + 1, updated_at = NOW()
		WHERE user_id = $1 AND priority >= $2 AND ($3::uuid = '00000000-0000-0000-0000-000000000000' OR id <> $3)
	`
	_, err := s.db.ExecContext(ctx, query, userID, from, exclude)
	if err != nil {
		log.Error("failed to shift task priorities up",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("from", from))
		return store.NewStoreError("task", "shift", "update failed", err)
	}
	return nil
}

// ShiftDownAfter implements store.TaskStore.ShiftDownAfter
func (s *PostgresTaskStore) ShiftDownAfter(
	ctx context.Context,
	userID uuid.UUID,
	after int,
	exclude uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET priority = priority - 1, updated_at = NOW()
		WHERE user_id = $1 AND priority > $2 AND ($3::uuid = '00000000-0000-0000-0000-000000000000' OR id <> $3)
	`
	_, err := s.db.ExecContext(ctx, query, userID, after, exclude)
	if err != nil {
		log.Error("failed to shift task priorities down",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("after", after))
		return store.NewStoreError("task", "shift", "update failed", err)
	}
	return nil
}
