// Package views renders the dashboard pages from embedded HTML templates.
package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"slices"
	"strings"

	"team-project/dashboard/apperrors"
	"team-project/dashboard/models"
	"team-project/dashboard/services"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	PageLogin  = "login"
	PageAdmin  = "admin"
	PageLeader = "leader"
	PageMember = "member"
)

// Page is the data every template receives.
type Page struct {
	Title    string
	// Path is the dashboard the page belongs to, e.g. "/leader".
	Path     string
	Identity models.Identity
	SignedIn bool
	Flashes  []string
	View     services.View
	// Username refills the login form after a failed attempt.
	Username string
}

type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range []string{PageLogin, PageAdmin, PageLeader, PageMember} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes the page into w. Nothing is written when the template fails.
func (r *Renderer) Render(w io.Writer, name string, page Page) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", page); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"statusLabel":    func(s models.Status) string { return s.Label() },
	"severity":       func(s models.Status) string { return string(s.Severity()) },
	"join":           func(items []string) string { return strings.Join(items, ", ") },
	"lines":          func(items []string) string { return strings.Join(items, "\n") },
	"contains":       func(items []string, item string) bool { return slices.Contains(items, item) },
	"formatDeadline": formatDeadline,
	"formatTime":     formatTime,
	"errorText":      errorText,
	"fieldError":     fieldError,
}

func formatDeadline(ts models.Timestamp) string {
	if ts.IsZero() {
		return "N/A"
	}
	return ts.Format("2006-01-02")
}

func formatTime(ts models.Timestamp) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func errorText(err error) string {
	return apperrors.UserMessage(err)
}

func fieldError(err error, field string) string {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message(field)
	}
	return ""
}
