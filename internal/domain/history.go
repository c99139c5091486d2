package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// History-specific validation errors
var (
	ErrChangeTaskIDEmpty = errors.New("change task ID cannot be empty")
	ErrChangeUserIDEmpty = errors.New("change user ID cannot be empty")
	ErrInvalidAction     = errors.New("invalid change action")
)

// ChangeAction identifies the kind of mutation recorded in a task's
// change history.
type ChangeAction string

// Actions recorded in the task change history.
const (
	ChangeActionCreated   ChangeAction = "created"
	ChangeActionUpdated   ChangeAction = "updated"
	ChangeActionCompleted ChangeAction = "completed"
	ChangeActionDeleted   ChangeAction = "deleted"
)

// IsValid reports whether a is a recognized change action.
func (a ChangeAction) IsValid() bool {
	switch a {
	case ChangeActionCreated, ChangeActionUpdated, ChangeActionCompleted, ChangeActionDeleted:
		return true
	}
	return false
}

// TaskChange is one entry in a task's audit trail. A row is written in
// the same transaction as the mutation it records, so the history is
// never ahead of or behind the task table.
type TaskChange struct {
	ID        uuid.UUID    `json:"id"`
	TaskID    uuid.UUID    `json:"task_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Action    ChangeAction `json:"action"`
	Detail    string       `json:"detail"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewTaskChange creates a history entry for the given task and actor.
// Returns an error if validation fails.
func NewTaskChange(taskID, userID uuid.UUID, action ChangeAction, detail string) (*TaskChange, error) {
	change := &TaskChange{
		ID:        uuid.New(),
		TaskID:    taskID,
		UserID:    userID,
		Action:    action,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}

	if err := change.Validate(); err != nil {
		return nil, err
	}

	return change, nil
}

// Validate checks if the TaskChange has valid data.
func (c *TaskChange) Validate() error {
	if c.TaskID == uuid.Nil {
		return ErrChangeTaskIDEmpty
	}

	if c.UserID == uuid.Nil {
		return ErrChangeUserIDEmpty
	}

	if !c.Action.IsValid() {
		return ErrInvalidAction
	}

	return nil
}
