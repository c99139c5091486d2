package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/api/shared"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/mocks"
	"github.com/taskdeck/taskdeck/internal/service/tasks"
)

// newTaskHandlerFixture builds a TaskHandler over in-memory stores and
// a chi router matching the API route layout.
func newTaskHandlerFixture(t *testing.T) (*tasks.Service, *chi.Mux) {
	t.Helper()

	svc, err := tasks.NewService(
		&mocks.PassthroughTxRunner{},
		mocks.NewMockTaskStore(),
		mocks.NewMockHistoryStore(),
		slog.Default(),
	)
	require.NoError(t, err)

	handler := NewTaskHandler(svc, slog.Default())

	router := chi.NewRouter()
	router.Get("/api/tasks", handler.ListTasks)
	router.Get("/api/tasks/{id}", handler.GetTask)
	router.Get("/api/tasks/{id}/history", handler.GetTaskHistory)
	router.Get("/api/history/task", handler.ListHistory)
	return svc, router
}

// seedTask creates a task through the service so history and priority
// bookkeeping run the same way as production.
func seedTask(t *testing.T, svc *tasks.Service, userID uuid.UUID, title string, priority int) *domain.Task {
	t.Helper()

	task, err := svc.Create(context.Background(), userID, tasks.CreateInput{
		Title:       title,
		Description: "seeded",
		Priority:    priority,
		Status:      domain.TaskStatusToDo,
	})
	require.NoError(t, err)
	return task
}

// authenticatedRequest builds a GET request with the user ID already in
// context, as the auth middleware would leave it.
func authenticatedRequest(t *testing.T, target string, userID uuid.UUID) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if userID != uuid.Nil {
		ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
		req = req.WithContext(ctx)
	}
	return req
}

func TestListTasks(t *testing.T) {
	svc, router := newTaskHandlerFixture(t)
	alice := uuid.New()
	bob := uuid.New()

	seedTask(t, svc, alice, "alice open", 1)
	done := seedTask(t, svc, alice, "alice done", 2)
	_, err := svc.Complete(context.Background(), done.ID, alice)
	require.NoError(t, err)
	seedTask(t, svc, bob, "bob task", 1)

	tests := []struct {
		name       string
		target     string
		wantTitles []string
	}{
		{
			name:       "default view shows own open tasks",
			target:     "/api/tasks",
			wantTitles: []string{"alice open"},
		},
		{
			name:       "completed view shows own completed tasks",
			target:     "/api/tasks?view=completed",
			wantTitles: []string{"alice done"},
		},
		{
			name:       "all view shows everyone's tasks",
			target:     "/api/tasks?view=all",
			wantTitles: []string{"alice open", "alice done", "bob task"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, authenticatedRequest(t, tc.target, alice))

			require.Equal(t, http.StatusOK, rr.Code)

			var got []TaskResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))

			titles := make([]string, 0, len(got))
			for _, task := range got {
				titles = append(titles, task.Title)
			}
			assert.ElementsMatch(t, tc.wantTitles, titles)
		})
	}

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authenticatedRequest(t, "/api/tasks", uuid.Nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("open tasks are ordered by priority", func(t *testing.T) {
		seedTask(t, svc, alice, "urgent", 1)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authenticatedRequest(t, "/api/tasks", alice))
		require.Equal(t, http.StatusOK, rr.Code)

		var got []TaskResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "urgent", got[0].Title)
		assert.Equal(t, 1, got[0].Priority)
		assert.Equal(t, "alice open", got[1].Title)
	})
}

func TestGetTask(t *testing.T) {
	svc, router := newTaskHandlerFixture(t)
	owner := uuid.New()

	task := seedTask(t, svc, owner, "mine", 1)

	t.Run("owner can fetch the task", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authenticatedRequest(t, "/api/tasks/"+task.ID.String(), owner))

		require.Equal(t, http.StatusOK, rr.Code)

		var got TaskResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, "mine", got.Title)
		assert.Equal(t, string(domain.TaskStatusToDo), got.Status)
	})

	t.Run("another user's fetch returns not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authenticatedRequest(t, "/api/tasks/"+task.ID.String(), uuid.New()))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed ID returns bad request", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authenticatedRequest(t, "/api/tasks/not-a-uuid", owner))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetTaskHistory(t *testing.T) {
	svc, router := newTaskHandlerFixture(t)
	owner := uuid.New()

	task := seedTask(t, svc, owner, "tracked", 1)
	_, err := svc.Update(context.Background(), task.ID, owner, tasks.UpdateInput{
		Title:       "tracked v2",
		Description: "seeded",
		Priority:    1,
		Status:      domain.TaskStatusInProgress,
	})
	require.NoError(t, err)

	t.Run("history lists changes newest first", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authenticatedRequest(t, "/api/tasks/"+task.ID.String()+"/history", owner))

		require.Equal(t, http.StatusOK, rr.Code)

		var got []TaskChangeResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, string(domain.ChangeActionUpdated), got[0].Action)
		assert.Equal(t, string(domain.ChangeActionCreated), got[1].Action)
	})

	t.Run("another user's history request returns not found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, authenticatedRequest(t, "/api/tasks/"+task.ID.String()+"/history", uuid.New()))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListHistory(t *testing.T) {
	svc, router := newTaskHandlerFixture(t)
	owner := uuid.New()

	first := seedTask(t, svc, owner, "first", 1)
	seedTask(t, svc, owner, "second", 2)
	require.NoError(t, svc.Delete(context.Background(), first.ID, owner))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, authenticatedRequest(t, "/api/history/task", owner))

	require.Equal(t, http.StatusOK, rr.Code)

	var got []TaskChangeResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	require.Len(t, got, 3, "two creates plus one delete")
	assert.Equal(t, string(domain.ChangeActionDeleted), got[0].Action)
}
