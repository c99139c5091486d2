package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/taskdeck/taskdeck/internal/jobs"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
)

// ShowReminder handles GET /reminder.
func (h *Handler) ShowReminder(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "reminder", reminderPage{
		basePage: basePage{Authenticated: true},
		Form:     reminderForm{Timezone: "UTC"},
	})
}

// ScheduleReminder handles POST /reminder. The reminder is
// fire-and-forget: whatever happens while parsing or enqueueing, the
// response is a redirect back to the task list. Failures only surface
// in the logs.
func (h *Handler) ScheduleReminder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	defer http.Redirect(w, r, "/tasks", http.StatusFound)

	userID, ok := sessionUserID(r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Warn("malformed reminder form", slog.String("error", err.Error()))
		return
	}

	alertAt, err := jobs.ResolveAlertTime(
		r.PostFormValue("alert_time"),
		r.PostFormValue("timezone"),
		time.Now())
	if err != nil {
		log.Warn("reminder not scheduled",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		log.Error("failed to load user for reminder",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return
	}

	job := jobs.NewReminderJob(h.sender, user.Email, alertAt)
	if err := h.queue.Enqueue(job); err != nil {
		log.Error("failed to enqueue reminder",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return
	}

	log.Info("reminder scheduled",
		slog.String("user_id", userID.String()),
		slog.Time("alert_at", alertAt))
}
