package web

import (
	"github.com/taskdeck/taskdeck/internal/domain"
)

// basePage carries the fields every template expects from the layout.
type basePage struct {
	Authenticated bool
	Flash         string
}

// taskListPage backs the three list views.
type taskListPage struct {
	basePage
	Heading     string
	Tasks       []*domain.Task
	ShowActions bool
}

// taskForm holds the raw form values so invalid submissions re-render
// with what the user typed.
type taskForm struct {
	Title       string
	Description string
	Priority    string
	Status      string
}

// taskFormPage backs the create and update forms.
type taskFormPage struct {
	basePage
	Heading  string
	Action   string
	Form     taskForm
	Statuses []domain.TaskStatus
	Error    string
}

// taskDetailPage backs the detail view.
type taskDetailPage struct {
	basePage
	Task    *domain.Task
	Changes []*domain.TaskChange
}

// loginForm holds the login form values.
type loginForm struct {
	Username string
}

// loginPage backs the login view.
type loginPage struct {
	basePage
	Form  loginForm
	Next  string
	Error string
}

// signupForm holds the signup form values.
type signupForm struct {
	Username string
	Email    string
}

// signupPage backs the signup view.
type signupPage struct {
	basePage
	Form  signupForm
	Error string
}

// reminderForm holds the reminder form values.
type reminderForm struct {
	AlertTime string
	Timezone  string
}

// reminderPage backs the reminder view.
type reminderPage struct {
	basePage
	Form  reminderForm
	Error string
}
