package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/platform/logger"
	"github.com/taskdeck/taskdeck/internal/service/tasks"
	"github.com/taskdeck/taskdeck/internal/store"
)

// ListTasks handles GET /tasks/: the caller's pending tasks by
// priority.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.renderTaskList(w, r, "My tasks", store.FilterMine, true)
}

// ListAllTasks handles GET /all_tasks/: every user's tasks.
func (h *Handler) ListAllTasks(w http.ResponseWriter, r *http.Request) {
	h.renderTaskList(w, r, "All tasks", store.FilterAllUsers, false)
}

// ListCompletedTasks handles GET /completed_tasks: the caller's
// completed tasks.
func (h *Handler) ListCompletedTasks(w http.ResponseWriter, r *http.Request) {
	h.renderTaskList(w, r, "Completed tasks", store.FilterCompletedMine, false)
}

func (h *Handler) renderTaskList(
	w http.ResponseWriter,
	r *http.Request,
	heading string,
	filter store.ListFilter,
	showActions bool,
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := sessionUserID(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	taskList, err := h.taskService.List(r.Context(), userID, filter)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	render(w, http.StatusOK, "task_list", taskListPage{
		basePage:    basePage{Authenticated: true},
		Heading:     heading,
		Tasks:       taskList,
		ShowActions: showActions,
	})
}

// ShowCreateTask handles GET /create-task/.
func (h *Handler) ShowCreateTask(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "task_form", taskFormPage{
		basePage: basePage{Authenticated: true},
		Heading:  "New task",
		Action:   "/create-task/",
		Form:     taskForm{Priority: "1", Status: string(domain.TaskStatusToDo)},
		Statuses: domain.AllTaskStatuses,
	})
}

// CreateTask handles POST /create-task/. Valid submissions redirect to
// /tasks/; validation failures re-render the form with the submitted
// values.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := sessionUserID(r)
	if !ok {
		redirectToLogin(w, r)
		return
	}

	form, input, err := parseTaskForm(r)
	if err == nil {
		_, err = h.taskService.Create(r.Context(), userID, tasks.CreateInput{
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Status:      input.Status,
		})
	}
	if err != nil {
		log.Debug("task creation rejected", slog.String("error", err.Error()))
		render(w, http.StatusOK, "task_form", taskFormPage{
			basePage: basePage{Authenticated: true},
			Heading:  "New task",
			Action:   "/create-task/",
			Form:     form,
			Statuses: domain.AllTaskStatuses,
			Error:    formErrorMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

// ShowUpdateTask handles GET /update-task/{id}/, prefilled with the
// task's current values. 404 when the task is missing or not the
// caller's.
func (h *Handler) ShowUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.sessionUserAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID, userID)
	if err != nil {
		h.taskError(w, r, err)
		return
	}

	render(w, http.StatusOK, "task_form", taskFormPage{
		basePage: basePage{Authenticated: true},
		Heading:  "Edit task",
		Action:   "/update-task/" + task.ID.String() + "/",
		Form: taskForm{
			Title:       task.Title,
			Description: task.Description,
			Priority:    strconv.Itoa(task.Priority),
			Status:      string(task.Status),
		},
		Statuses: domain.AllTaskStatuses,
	})
}

// UpdateTask handles POST /update-task/{id}/.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := h.sessionUserAndTaskID(w, r)
	if !ok {
		return
	}

	form, input, err := parseTaskForm(r)
	if err == nil {
		_, err = h.taskService.Update(r.Context(), taskID, userID, tasks.UpdateInput{
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Status:      input.Status,
			Completed:   input.Status == domain.TaskStatusDone,
		})
	}
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Debug("task update rejected",
			slog.String("task_id", taskID.String()),
			slog.String("error", err.Error()))
		render(w, http.StatusOK, "task_form", taskFormPage{
			basePage: basePage{Authenticated: true},
			Heading:  "Edit task",
			Action:   "/update-task/" + taskID.String() + "/",
			Form:     form,
			Statuses: domain.AllTaskStatuses,
			Error:    formErrorMessage(err),
		})
		return
	}

	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

// CompleteTask handles POST /complete_task/{id}/.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.sessionUserAndTaskID(w, r)
	if !ok {
		return
	}

	if _, err := h.taskService.Complete(r.Context(), taskID, userID); err != nil {
		h.taskError(w, r, err)
		return
	}

	http.Redirect(w, r, "/tasks/", http.StatusFound)
}

// DeleteTask handles POST /delete-task/{id}/. Redirects to /tasks
// without the trailing slash, as the original views did.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.sessionUserAndTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.Delete(r.Context(), taskID, userID); err != nil {
		h.taskError(w, r, err)
		return
	}

	http.Redirect(w, r, "/tasks", http.StatusFound)
}

// TaskDetail handles GET /detail-task/{id}/, showing the task along
// with its change history.
func (h *Handler) TaskDetail(w http.ResponseWriter, r *http.Request) {
	userID, taskID, ok := h.sessionUserAndTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Get(r.Context(), taskID, userID)
	if err != nil {
		h.taskError(w, r, err)
		return
	}

	changes, err := h.taskService.TaskHistory(r.Context(), taskID, userID)
	if err != nil {
		h.taskError(w, r, err)
		return
	}

	render(w, http.StatusOK, "task_detail", taskDetailPage{
		basePage: basePage{Authenticated: true},
		Task:     task,
		Changes:  changes,
	})
}

// sessionUserAndTaskID extracts the session user and the {id} path
// parameter, writing the response on failure.
func (h *Handler) sessionUserAndTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := sessionUserID(r)
	if !ok {
		redirectToLogin(w, r)
		return uuid.Nil, uuid.Nil, false
	}

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, taskID, true
}

// taskError maps service errors to a view response: missing or
// foreign tasks are a 404, everything else a 500.
func (h *Handler) taskError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrTaskNotFound) {
		http.NotFound(w, r)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Error("task operation failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// parsedTaskInput is the typed result of a valid task form.
type parsedTaskInput struct {
	Title       string
	Description string
	Priority    int
	Status      domain.TaskStatus
}

// parseTaskForm reads the submitted form, returning both the raw
// values (for re-rendering) and the typed input.
func parseTaskForm(r *http.Request) (taskForm, parsedTaskInput, error) {
	if err := r.ParseForm(); err != nil {
		return taskForm{}, parsedTaskInput{}, err
	}

	form := taskForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Priority:    r.PostFormValue("priority"),
		Status:      r.PostFormValue("status"),
	}

	priority, err := strconv.Atoi(form.Priority)
	if err != nil {
		return form, parsedTaskInput{}, domain.ErrInvalidPriority
	}

	status := domain.TaskStatus(form.Status)
	if form.Status == "" {
		status = domain.TaskStatusToDo
	} else if !status.IsValid() {
		return form, parsedTaskInput{}, domain.ErrInvalidStatus
	}

	return form, parsedTaskInput{
		Title:       form.Title,
		Description: form.Description,
		Priority:    priority,
		Status:      status,
	}, nil
}

// formErrorMessage turns a service error into a short message suitable
// for the form.
func formErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidPriority):
		return "Priority must be a positive number."
	case errors.Is(err, domain.ErrInvalidStatus):
		return "Pick one of the listed statuses."
	case errors.Is(err, domain.ErrTaskTitleEmpty):
		return "Title is required."
	case errors.Is(err, domain.ErrTaskDescriptionEmpty):
		return "Description is required."
	case errors.Is(err, domain.ErrValidation):
		return "Please check the form and try again."
	default:
		return "Something went wrong, please try again."
	}
}
