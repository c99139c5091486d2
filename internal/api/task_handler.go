package api

import (
	"log/slog"
	"net/http"

	"github.com/taskdeck/taskdeck/internal/api/shared"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
	"github.com/taskdeck/taskdeck/internal/service/tasks"
	"github.com/taskdeck/taskdeck/internal/store"
)

// TaskHandler handles task-related HTTP requests. The API surface is
// read-only: task mutation happens through the web views.
type TaskHandler struct {
	taskService *tasks.Service
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *tasks.Service, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks requests. The optional view query
// parameter selects between the caller's open tasks (default), the
// caller's completed tasks (view=completed), and every user's tasks
// (view=all).
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	filter := store.FilterMine
	switch r.URL.Query().Get("view") {
	case "completed":
		filter = store.FilterCompletedMine
	case "all":
		filter = store.FilterAllUsers
	}

	taskList, err := h.taskService.List(r.Context(), userID, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list tasks", err)
		return
	}

	log.Debug("listed tasks",
		slog.String("user_id", userID.String()),
		slog.String("view", string(filter)),
		slog.Int("count", len(taskList)))
	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(taskList))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// GetTaskHistory handles GET /api/tasks/{id}/history requests. It
// returns the change entries for one of the caller's tasks, newest
// first.
func (h *TaskHandler) GetTaskHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	changes, err := h.taskService.TaskHistory(r.Context(), taskID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("listed task history",
		slog.String("user_id", userID.String()),
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(changes)))
	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskChangeListResponse(changes))
}

// ListHistory handles GET /api/history requests. It returns the change
// entries recorded against all of the caller's tasks, newest first.
func (h *TaskHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	changes, err := h.taskService.History(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to list history", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskChangeListResponse(changes))
}
