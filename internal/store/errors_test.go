package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	t.Run("formats entity and operation", func(t *testing.T) {
		t.Parallel()

		err := NewStoreError("task", "create", "insert failed", cause)
		assert.Equal(t, "create operation on task failed: insert failed: connection refused", err.Error())

		bare := NewStoreError("user", "get", "query failed", nil)
		assert.Equal(t, "get operation on user failed: query failed", bare.Error())
	})

	t.Run("unwraps to the cause", func(t *testing.T) {
		t.Parallel()

		err := NewStoreError("task", "list", "query failed", cause)
		assert.ErrorIs(t, err, cause)

		var storeErr *StoreError
		assert.ErrorAs(t, error(err), &storeErr)
		assert.Equal(t, "task", storeErr.Entity)
		assert.Equal(t, "list", storeErr.Operation)
	})

	t.Run("preserves sentinel predicates through wrapping", func(t *testing.T) {
		t.Parallel()

		err := NewStoreError("task", "get", "lookup failed", ErrTaskNotFound)
		assert.True(t, IsNotFoundError(err))

		dup := NewStoreError("user", "create", "insert failed", ErrUsernameExists)
		assert.True(t, IsDuplicateError(dup))
	})
}

func TestErrorPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("load: %w", ErrNotFound)))
	assert.False(t, IsNotFoundError(ErrDuplicate))

	assert.True(t, IsDuplicateError(ErrUsernameExists))
	assert.False(t, IsDuplicateError(ErrTaskNotFound))
}
