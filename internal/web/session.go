package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/api/shared"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/service/auth"
)

// SessionCookieName is the cookie carrying the access token for the
// web views.
const SessionCookieName = "taskdeck_session"

// loginPath is where unauthenticated requests are redirected; the
// original path is preserved in the next query parameter.
const loginPath = "/user/login"

// SessionManager issues, validates and clears the session cookie. The
// cookie value is the same HMAC-signed access token the API uses.
type SessionManager struct {
	jwtService auth.JWTService
	lifetime   time.Duration
	logger     *slog.Logger
}

// NewSessionManager creates a SessionManager with the configured token
// lifetime.
func NewSessionManager(jwtService auth.JWTService, cfg config.AuthConfig, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		jwtService: jwtService,
		lifetime:   time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		logger:     logger.With(slog.String("component", "session_manager")),
	}
}

// Issue generates an access token for the user and sets the session
// cookie.
func (m *SessionManager) Issue(ctx context.Context, w http.ResponseWriter, userID uuid.UUID) error {
	token, err := m.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// UserID extracts and validates the session token from the request
// cookie. Returns the authenticated user's ID.
func (m *SessionManager) UserID(r *http.Request) (uuid.UUID, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return uuid.Nil, err
	}

	claims, err := m.jwtService.ValidateToken(r.Context(), cookie.Value)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// RequireSession redirects requests without a valid session to the
// login page, carrying the original path in the next parameter. Valid
// sessions get the user ID placed in the request context.
func (m *SessionManager) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.UserID(r)
		if err != nil {
			m.logger.Debug("session missing or invalid",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()))
			redirectToLogin(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// redirectToLogin sends the caller to the login form. Slashes in the
// original path are kept literal so the redirect target reads as
// /user/login?next=/tasks/.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	next := strings.ReplaceAll(url.QueryEscape(r.URL.RequestURI()), "%2F", "/")
	http.Redirect(w, r, loginPath+"?next="+next, http.StatusFound)
}

// sessionUserID pulls the authenticated user ID placed in the context
// by RequireSession.
func sessionUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
