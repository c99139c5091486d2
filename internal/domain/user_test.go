package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid user",
			username: "johndoe",
			email:    "johndoe@gmail.com",
			password: "helloworld12345",
			wantErr:  nil,
		},
		{
			name:     "valid user without email",
			username: "johndoe",
			email:    "",
			password: "helloworld12345",
			wantErr:  nil,
		},
		{
			name:     "empty username",
			username: "",
			email:    "johndoe@gmail.com",
			password: "helloworld12345",
			wantErr:  domain.ErrEmptyUsername,
		},
		{
			name:     "whitespace username",
			username: "   ",
			email:    "johndoe@gmail.com",
			password: "helloworld12345",
			wantErr:  domain.ErrEmptyUsername,
		},
		{
			name:     "malformed email",
			username: "johndoe",
			email:    "not-an-email",
			password: "helloworld12345",
			wantErr:  domain.ErrInvalidEmail,
		},
		{
			name:     "password too short",
			username: "johndoe",
			email:    "johndoe@gmail.com",
			password: "short",
			wantErr:  domain.ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := domain.NewUser(tt.username, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.NotEqual(t, uuid.Nil, user.ID)
		})
	}
}

func TestUserValidateStoredUser(t *testing.T) {
	t.Parallel()

	// A user loaded from the database has only the hash.
	user := &domain.User{
		ID:             uuid.New(),
		Username:       "johndoe",
		HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
	}
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
}
