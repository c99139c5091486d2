package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
	"github.com/taskdeck/taskdeck/internal/store"
)

// ShowLogin handles GET /user/login. The form is reachable without a
// session.
func (h *Handler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "login", loginPage{
		Next: r.URL.Query().Get("next"),
	})
}

// Login handles POST /user/login. A successful login sets the session
// cookie and redirects to the next parameter, defaulting to /tasks/.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	next := safeNextTarget(r.URL.Query().Get("next"))

	renderFailure := func() {
		render(w, http.StatusOK, "login", loginPage{
			Form:  loginForm{Username: username},
			Next:  r.URL.Query().Get("next"),
			Error: "Invalid username or password.",
		})
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Error("login lookup failed", slog.String("error", err.Error()))
		}
		renderFailure()
		return
	}

	if err := h.verifier.Compare(user.HashedPassword, password); err != nil {
		renderFailure()
		return
	}

	if err := h.sessions.Issue(r.Context(), w, user.ID); err != nil {
		log.Error("failed to issue session",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	http.Redirect(w, r, next, http.StatusFound)
}

// ShowSignup handles GET /user/signup.
func (h *Handler) ShowSignup(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "signup", signupPage{})
}

// Signup handles POST /user/signup. A successful signup logs the user
// straight in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	form := signupForm{
		Username: r.PostFormValue("username"),
		Email:    r.PostFormValue("email"),
	}

	user, err := domain.NewUser(form.Username, form.Email, r.PostFormValue("password"))
	if err == nil {
		err = h.users.Create(r.Context(), user)
	}
	if err != nil {
		message := signupErrorMessage(err)
		log.Debug("signup rejected", slog.String("error", err.Error()))
		render(w, http.StatusOK, "signup", signupPage{Form: form, Error: message})
		return
	}

	if err := h.sessions.Issue(r.Context(), w, user.ID); err != nil {
		log.Error("failed to issue session after signup",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Info("user signed up", slog.String("user_id", user.ID.String()))
	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

// Logout handles POST /user/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/user/login", http.StatusFound)
}

// safeNextTarget keeps post-login redirects on this site. Anything not
// starting with a single slash falls back to the task list.
func safeNextTarget(next string) string {
	if len(next) < 1 || next[0] != '/' {
		return "/tasks/"
	}
	if len(next) > 1 && next[1] == '/' {
		// Protocol-relative URL, would leave the site.
		return "/tasks/"
	}
	return next
}

func signupErrorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrUsernameExists):
		return "That username is taken."
	case errors.Is(err, domain.ErrEmptyUsername):
		return "Username is required."
	case errors.Is(err, domain.ErrInvalidEmail):
		return "Enter a valid email address."
	case errors.Is(err, domain.ErrPasswordTooShort):
		return "Password must be at least 8 characters."
	default:
		return "Could not create the account, please check the form."
	}
}
