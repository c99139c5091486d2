package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/mocks"
	"github.com/taskdeck/taskdeck/internal/service/auth"
)

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		cookieValue    string
		validateErr    error
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "valid bearer token",
			authHeader:     "Bearer good-token",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "missing header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer stale-token",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer bad-token",
			validateErr:    auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "session cookie fallback",
			cookieValue:    "good-token",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "header takes precedence over cookie",
			authHeader:     "Bearer stale-token",
			cookieValue:    "good-token",
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			jwtService := &mocks.MockJWTService{
				Err:    tc.validateErr,
				Claims: &auth.Claims{UserID: userID, TokenType: "access"},
			}

			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true

				gotID, ok := GetUserID(r)
				require.True(t, ok, "user ID should be in context")
				assert.Equal(t, userID, gotID)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			if tc.cookieValue != "" {
				req.AddCookie(&http.Cookie{Name: "taskdeck_session", Value: tc.cookieValue})
			}
			rr := httptest.NewRecorder()

			NewAuthMiddleware(jwtService, "taskdeck_session").Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectNext, nextCalled)
		})
	}
}
