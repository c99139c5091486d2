package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
	"github.com/taskdeck/taskdeck/internal/store"
)

// PostgresHistoryStore implements the store.HistoryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresHistoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresHistoryStore creates a new PostgreSQL implementation of the
// HistoryStore interface.
func NewPostgresHistoryStore(db store.DBTX, logger *slog.Logger) *PostgresHistoryStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresHistoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "history_store")),
	}
}

// Ensure PostgresHistoryStore implements store.HistoryStore interface
var _ store.HistoryStore = (*PostgresHistoryStore)(nil)

// WithTx implements store.HistoryStore.WithTx
func (s *PostgresHistoryStore) WithTx(tx *sql.Tx) store.HistoryStore {
	return &PostgresHistoryStore{
		db:     tx,
		logger: s.logger,
	}
}

// Record implements store.HistoryStore.Record
//
// The task_id column carries no foreign key so history survives task
// deletion; the deletion itself is the last entry.
func (s *PostgresHistoryStore) Record(ctx context.Context, change *domain.TaskChange) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := change.Validate(); err != nil {
		log.Warn("change validation failed during record",
			slog.String("error", err.Error()),
			slog.String("task_id", change.TaskID.String()))
		return err
	}

	query := `
		INSERT INTO task_history (id, task_id, user_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		change.ID,
		change.TaskID,
		change.UserID,
		change.Action,
		change.Detail,
		change.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, change.UserID)
		}

		log.Error("failed to record task change",
			slog.String("error", err.Error()),
			slog.String("task_id", change.TaskID.String()))
		return store.NewStoreError("task_change", "record", "insert failed", err)
	}

	return nil
}

const changeColumns = `id, task_id, user_id, action, detail, created_at`

func (s *PostgresHistoryStore) listChanges(ctx context.Context, query string, arg any) ([]*domain.TaskChange, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, store.NewStoreError("task_change", "list", "query failed", err)
	}
	defer func() { _ = rows.Close() }()

	changes := make([]*domain.TaskChange, 0)
	for rows.Next() {
		var change domain.TaskChange
		if err := rows.Scan(
			&change.ID,
			&change.TaskID,
			&change.UserID,
			&change.Action,
			&change.Detail,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		changes = append(changes, &change)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return changes, nil
}

// ListByTask implements store.HistoryStore.ListByTask
func (s *PostgresHistoryStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.TaskChange, error) {
	query := `SELECT ` + changeColumns + ` FROM task_history
		WHERE task_id = $1 ORDER BY created_at DESC`
	return s.listChanges(ctx, query, taskID)
}

// ListByUser implements store.HistoryStore.ListByUser
func (s *PostgresHistoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.TaskChange, error) {
	query := `SELECT ` + changeColumns + ` FROM task_history
		WHERE user_id = $1 ORDER BY created_at DESC`
	return s.listChanges(ctx, query, userID)
}
