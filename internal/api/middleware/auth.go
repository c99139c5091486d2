// Package middleware provides HTTP middleware for the API routes.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/api/shared"
	"github.com/taskdeck/taskdeck/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for API routes.
type AuthMiddleware struct {
	jwtService    auth.JWTService
	sessionCookie string
}

// NewAuthMiddleware creates a new AuthMiddleware. sessionCookie names a
// cookie accepted as a fallback token source, so browser sessions can
// call the API without a separate bearer token; pass "" to accept the
// Authorization header only.
func NewAuthMiddleware(jwtService auth.JWTService, sessionCookie string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtService,
		sessionCookie: sessionCookie,
	}
}

// Authenticate validates JWT tokens from the Authorization header (or,
// failing that, the session cookie) and adds the user ID to the request
// context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, errMsg := m.extractToken(r)
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, errMsg)
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrWrongTokenType):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractToken pulls the access token from the Authorization header,
// falling back to the session cookie. An empty token is returned with
// the 401 message describing what was wrong.
func (m *AuthMiddleware) extractToken(r *http.Request) (token, errMsg string) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "Invalid authorization format"
		}
		return parts[1], ""
	}

	if m.sessionCookie != "" {
		if cookie, err := r.Cookie(m.sessionCookie); err == nil && cookie.Value != "" {
			return cookie.Value, ""
		}
	}

	return "", "Authorization header required"
}

// GetUserID extracts the user ID from the request context.
// Returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}
