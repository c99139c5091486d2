package web

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/domain"
	"github.com/taskdeck/taskdeck/internal/jobs"
	"github.com/taskdeck/taskdeck/internal/mocks"
	"github.com/taskdeck/taskdeck/internal/service/auth"
	"github.com/taskdeck/taskdeck/internal/service/tasks"
)

// captureQueue records enqueued jobs instead of running them.
type captureQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *captureQueue) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// captureSender records the last sent message.
type captureSender struct {
	to string
}

func (s *captureSender) Send(ctx context.Context, to, subject, body string) error {
	s.to = to
	return nil
}

// fixture bundles the web handler with everything a test needs to
// drive it.
type fixture struct {
	router   *chi.Mux
	taskSvc  *tasks.Service
	users    *mocks.MockUserStore
	sessions *SessionManager
	queue    *captureQueue
	sender   *captureSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	authCfg := config.AuthConfig{
		JWTSecret:                   "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
	jwtService, err := auth.NewJWTService(authCfg)
	require.NoError(t, err)

	taskSvc, err := tasks.NewService(
		&mocks.PassthroughTxRunner{},
		mocks.NewMockTaskStore(),
		mocks.NewMockHistoryStore(),
		slog.Default(),
	)
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	sessions := NewSessionManager(jwtService, authCfg, slog.Default())
	queue := &captureQueue{}
	sender := &captureSender{}

	handler := NewHandler(
		taskSvc,
		users,
		&mocks.MockPasswordVerifier{ShouldSucceed: true},
		sessions,
		queue,
		sender,
		slog.Default(),
	)

	router := chi.NewRouter()
	handler.Routes(router)

	return &fixture{
		router:   router,
		taskSvc:  taskSvc,
		users:    users,
		sessions: sessions,
		queue:    queue,
		sender:   sender,
	}
}

// signUpUser stores a user and returns it with a valid session cookie.
func (f *fixture) signUpUser(t *testing.T, username string) (*domain.User, *http.Cookie) {
	t.Helper()

	user, err := domain.NewUser(username, username+"@example.com", "a-long-password")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(context.Background(), user))

	rr := httptest.NewRecorder()
	require.NoError(t, f.sessions.Issue(context.Background(), rr, user.ID))

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return user, cookies[0]
}

func (f *fixture) get(t *testing.T, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) postForm(t *testing.T, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func taskFormValues(title, description, priority, status string) url.Values {
	return url.Values{
		"title":       {title},
		"description": {description},
		"priority":    {priority},
		"status":      {status},
	}
}

func TestSessionRequired(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		target string
	}{
		{"task list", "/tasks/"},
		{"all tasks", "/all_tasks/"},
		{"completed tasks", "/completed_tasks"},
		{"create form", "/create-task/"},
		{"reminder form", "/reminder"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := f.get(t, tc.target, nil)
			require.Equal(t, http.StatusFound, rr.Code)
			assert.Equal(t, "/user/login?next="+tc.target, rr.Header().Get("Location"))
		})
	}

	t.Run("garbage cookie also redirects", func(t *testing.T) {
		rr := f.get(t, "/tasks/", &http.Cookie{Name: SessionCookieName, Value: "not-a-jwt"})
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/user/login?next=/tasks/", rr.Header().Get("Location"))
	})

	t.Run("auth forms are reachable without a session", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, f.get(t, "/user/login", nil).Code)
		assert.Equal(t, http.StatusOK, f.get(t, "/user/signup", nil).Code)
	})
}

func TestCreateTaskFlow(t *testing.T) {
	f := newFixture(t)
	user, cookie := f.signUpUser(t, "gordo")

	t.Run("form renders", func(t *testing.T) {
		rr := f.get(t, "/create-task/", cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "<form")
	})

	t.Run("valid submission redirects to task list", func(t *testing.T) {
		rr := f.postForm(t, "/create-task/",
			taskFormValues("Buy milk", "Semi-skimmed", "1", "to do"), cookie)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks/", rr.Header().Get("Location"))

		list, err := f.taskSvc.List(context.Background(), user.ID, "mine")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Buy milk", list[0].Title)
	})

	t.Run("missing title re-renders the form", func(t *testing.T) {
		rr := f.postForm(t, "/create-task/",
			taskFormValues("", "No title", "1", "to do"), cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Title is required.")
	})

	t.Run("non-numeric priority re-renders the form", func(t *testing.T) {
		rr := f.postForm(t, "/create-task/",
			taskFormValues("Task", "Desc", "first", "to do"), cookie)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Priority must be a positive number.")
	})
}

func TestTaskListViews(t *testing.T) {
	f := newFixture(t)
	alice, aliceCookie := f.signUpUser(t, "alice")
	_, bobCookie := f.signUpUser(t, "bob")

	seed := func(cookie *http.Cookie, title string) {
		rr := f.postForm(t, "/create-task/", taskFormValues(title, "d", "1", "to do"), cookie)
		require.Equal(t, http.StatusFound, rr.Code)
	}
	seed(aliceCookie, "alice task")
	seed(bobCookie, "bob task")

	t.Run("own list shows only own tasks", func(t *testing.T) {
		body := f.get(t, "/tasks/", aliceCookie).Body.String()
		assert.Contains(t, body, "alice task")
		assert.NotContains(t, body, "bob task")
	})

	t.Run("all tasks shows everyone", func(t *testing.T) {
		body := f.get(t, "/all_tasks/", aliceCookie).Body.String()
		assert.Contains(t, body, "alice task")
		assert.Contains(t, body, "bob task")
	})

	t.Run("completed list fills after completing", func(t *testing.T) {
		list, err := f.taskSvc.List(context.Background(), alice.ID, "mine")
		require.NoError(t, err)
		require.Len(t, list, 1)

		rr := f.postForm(t, "/complete_task/"+list[0].ID.String()+"/", url.Values{}, aliceCookie)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks/", rr.Header().Get("Location"))

		body := f.get(t, "/completed_tasks", aliceCookie).Body.String()
		assert.Contains(t, body, "alice task")

		open := f.get(t, "/tasks/", aliceCookie).Body.String()
		assert.NotContains(t, open, "alice task")
	})
}

func TestUpdateTask(t *testing.T) {
	f := newFixture(t)
	alice, aliceCookie := f.signUpUser(t, "alice")
	_, bobCookie := f.signUpUser(t, "bob")

	rr := f.postForm(t, "/create-task/", taskFormValues("Original", "d", "1", "to do"), aliceCookie)
	require.Equal(t, http.StatusFound, rr.Code)
	list, err := f.taskSvc.List(context.Background(), alice.ID, "mine")
	require.NoError(t, err)
	taskID := list[0].ID.String()

	t.Run("edit form is prefilled", func(t *testing.T) {
		body := f.get(t, "/update-task/"+taskID+"/", aliceCookie).Body.String()
		assert.Contains(t, body, `value="Original"`)
	})

	t.Run("owner update redirects", func(t *testing.T) {
		rr := f.postForm(t, "/update-task/"+taskID+"/",
			taskFormValues("Renamed", "d", "1", "in progress"), aliceCookie)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks/", rr.Header().Get("Location"))
	})

	t.Run("another user gets a 404", func(t *testing.T) {
		rr := f.postForm(t, "/update-task/"+taskID+"/",
			taskFormValues("Stolen", "d", "1", "to do"), bobCookie)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		body := f.get(t, "/detail-task/"+taskID+"/", aliceCookie).Body.String()
		assert.Contains(t, body, "Renamed", "task must be unchanged by the foreign update")
	})

	t.Run("malformed id is a 404", func(t *testing.T) {
		rr := f.get(t, "/update-task/not-a-uuid/", aliceCookie)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	alice, aliceCookie := f.signUpUser(t, "alice")

	require.Equal(t, http.StatusFound,
		f.postForm(t, "/create-task/", taskFormValues("Doomed", "d", "1", "to do"), aliceCookie).Code)
	list, err := f.taskSvc.List(context.Background(), alice.ID, "mine")
	require.NoError(t, err)

	rr := f.postForm(t, "/delete-task/"+list[0].ID.String()+"/", url.Values{}, aliceCookie)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/tasks", rr.Header().Get("Location"), "delete redirects without the trailing slash")

	remaining, err := f.taskSvc.List(context.Background(), alice.ID, "mine")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestTaskDetail(t *testing.T) {
	f := newFixture(t)
	alice, aliceCookie := f.signUpUser(t, "alice")
	_, bobCookie := f.signUpUser(t, "bob")

	require.Equal(t, http.StatusFound,
		f.postForm(t, "/create-task/", taskFormValues("Visible", "details here", "1", "to do"), aliceCookie).Code)
	list, err := f.taskSvc.List(context.Background(), alice.ID, "mine")
	require.NoError(t, err)
	taskID := list[0].ID.String()

	t.Run("owner sees detail and history", func(t *testing.T) {
		rr := f.get(t, "/detail-task/"+taskID+"/", aliceCookie)
		require.Equal(t, http.StatusOK, rr.Code)
		body := rr.Body.String()
		assert.Contains(t, body, "Visible")
		assert.Contains(t, body, "details here")
		assert.Contains(t, body, "created")
	})

	t.Run("another user gets a 404", func(t *testing.T) {
		rr := f.get(t, "/detail-task/"+taskID+"/", bobCookie)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	f.signUpUser(t, "gordo")

	t.Run("valid login sets cookie and redirects", func(t *testing.T) {
		rr := f.postForm(t, "/user/login", url.Values{
			"username": {"gordo"},
			"password": {"a-long-password"},
		}, nil)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks/", rr.Header().Get("Location"))

		cookies := rr.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("next parameter is honored", func(t *testing.T) {
		rr := f.postForm(t, "/user/login?next=/all_tasks/", url.Values{
			"username": {"gordo"},
			"password": {"a-long-password"},
		}, nil)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/all_tasks/", rr.Header().Get("Location"))
	})

	t.Run("offsite next falls back to task list", func(t *testing.T) {
		rr := f.postForm(t, "/user/login?next=//evil.example.com", url.Values{
			"username": {"gordo"},
			"password": {"a-long-password"},
		}, nil)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks/", rr.Header().Get("Location"))
	})

	t.Run("unknown user re-renders the form", func(t *testing.T) {
		rr := f.postForm(t, "/user/login", url.Values{
			"username": {"nobody"},
			"password": {"whatever"},
		}, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Invalid username or password.")
	})
}

func TestSignupFlow(t *testing.T) {
	f := newFixture(t)

	t.Run("valid signup logs straight in", func(t *testing.T) {
		rr := f.postForm(t, "/user/signup", url.Values{
			"username": {"fresh"},
			"email":    {"fresh@example.com"},
			"password": {"a-long-password"},
		}, nil)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks/", rr.Header().Get("Location"))
		require.NotEmpty(t, rr.Result().Cookies())
	})

	t.Run("duplicate username re-renders", func(t *testing.T) {
		rr := f.postForm(t, "/user/signup", url.Values{
			"username": {"fresh"},
			"email":    {"other@example.com"},
			"password": {"a-long-password"},
		}, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "That username is taken.")
	})

	t.Run("short password re-renders", func(t *testing.T) {
		rr := f.postForm(t, "/user/signup", url.Values{
			"username": {"shorty"},
			"email":    {"shorty@example.com"},
			"password": {"tiny"},
		}, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Password must be at least 8 characters.")
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	_, cookie := f.signUpUser(t, "gordo")

	rr := f.postForm(t, "/user/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/user/login", rr.Header().Get("Location"))

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie must be expired")
}

func TestScheduleReminder(t *testing.T) {
	f := newFixture(t)
	_, cookie := f.signUpUser(t, "gordo")

	t.Run("valid request enqueues and redirects", func(t *testing.T) {
		rr := f.postForm(t, "/reminder", url.Values{
			"alert_time": {"23:59"},
			"timezone":   {"UTC"},
		}, cookie)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks", rr.Header().Get("Location"))

		require.Len(t, f.queue.jobs, 1)
		reminder, ok := f.queue.jobs[0].(*jobs.ReminderJob)
		require.True(t, ok)
		assert.Equal(t, "reminder", reminder.Type())
	})

	t.Run("invalid alert time still redirects", func(t *testing.T) {
		before := len(f.queue.jobs)
		rr := f.postForm(t, "/reminder", url.Values{
			"alert_time": {"not-a-time"},
			"timezone":   {"UTC"},
		}, cookie)
		require.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/tasks", rr.Header().Get("Location"))
		assert.Len(t, f.queue.jobs, before, "nothing should be enqueued")
	})

	t.Run("full queue still redirects", func(t *testing.T) {
		f.queue.err = jobs.ErrQueueFull
		rr := f.postForm(t, "/reminder", url.Values{
			"alert_time": {"23:59"},
			"timezone":   {"UTC"},
		}, cookie)
		assert.Equal(t, http.StatusFound, rr.Code)
		f.queue.err = nil
	})
}
