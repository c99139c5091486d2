// Package web serves the server-rendered HTML views: task lists and
// forms, authentication pages, and the reminder trigger. Sessions are
// JWT access tokens carried in an HttpOnly cookie.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages lists every page template; each is parsed together with the
// base layout.
var pages = []string{
	"task_list",
	"task_form",
	"task_detail",
	"login",
	"signup",
	"reminder",
}

// templates maps page name to its parsed template set.
var templates = mustParseTemplates()

func mustParseTemplates() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(templateFS,
			"templates/base.html",
			fmt.Sprintf("templates/%s.html", page))
		if err != nil {
			// ALLOW-PANIC: Embedded templates are fixed at build time
			panic(fmt.Sprintf("failed to parse template %s: %v", page, err))
		}
		parsed[page] = t
	}
	return parsed
}

// render writes the named page template with the given data. Template
// execution errors after headers are written can only be logged.
func render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := templates[page]
	if !ok {
		slog.Error("unknown template", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()))
	}
}
