package web

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/taskdeck/taskdeck/internal/jobs"
	"github.com/taskdeck/taskdeck/internal/platform/mail"
	"github.com/taskdeck/taskdeck/internal/service/auth"
	"github.com/taskdeck/taskdeck/internal/service/tasks"
	"github.com/taskdeck/taskdeck/internal/store"
)

// JobQueue accepts background jobs. Satisfied by *jobs.Runner.
type JobQueue interface {
	Enqueue(job jobs.Job) error
}

// Handler serves the HTML views.
type Handler struct {
	taskService *tasks.Service
	users       store.UserStore
	verifier    auth.PasswordVerifier
	sessions    *SessionManager
	queue       JobQueue
	sender      mail.Sender
	logger      *slog.Logger
}

// NewHandler creates the web Handler.
func NewHandler(
	taskService *tasks.Service,
	users store.UserStore,
	verifier auth.PasswordVerifier,
	sessions *SessionManager,
	queue JobQueue,
	sender mail.Sender,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		taskService: taskService,
		users:       users,
		verifier:    verifier,
		sessions:    sessions,
		queue:       queue,
		sender:      sender,
		logger:      logger.With(slog.String("component", "web_handler")),
	}
}

// Routes registers the view routes. Task and reminder routes sit
// behind the session middleware; the auth forms do not.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireSession)

		r.Get("/tasks/", h.ListTasks)
		r.Get("/all_tasks/", h.ListAllTasks)
		r.Get("/completed_tasks", h.ListCompletedTasks)

		r.Get("/create-task/", h.ShowCreateTask)
		r.Post("/create-task/", h.CreateTask)
		r.Get("/update-task/{id}/", h.ShowUpdateTask)
		r.Post("/update-task/{id}/", h.UpdateTask)
		r.Post("/complete_task/{id}/", h.CompleteTask)
		r.Post("/delete-task/{id}/", h.DeleteTask)
		r.Get("/detail-task/{id}/", h.TaskDetail)

		r.Get("/reminder", h.ShowReminder)
		r.Post("/reminder", h.ScheduleReminder)
	})

	r.Get("/user/login", h.ShowLogin)
	r.Post("/user/login", h.Login)
	r.Get("/user/signup", h.ShowSignup)
	r.Post("/user/signup", h.Signup)
	r.Post("/user/logout", h.Logout)
}
