package handlers

import (
	"net/http"
	"strings"

	"team-project/dashboard/apperrors"
	"team-project/dashboard/authz"
	"team-project/dashboard/logging"
	"team-project/dashboard/models"
	"team-project/dashboard/services"
	"team-project/dashboard/session"
	"team-project/dashboard/views"
)

// DashboardHandler serves the three role dashboards. Every route behind it
// runs after RequireDashboard, so the identity is always in the context.
type DashboardHandler struct {
	sessions   *session.Manager
	dashboards *services.DashboardRegistry
	renderer   *views.Renderer
}

func NewDashboardHandler(sessions *session.Manager, dashboards *services.DashboardRegistry, renderer *views.Renderer) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, dashboards: dashboards, renderer: renderer}
}

func (h *DashboardHandler) dashboard(r *http.Request) *services.Dashboard {
	identity, _ := IdentityFrom(r.Context())
	return h.dashboards.Open(h.sessions.DashboardKey(r), identity)
}

// show renders page, loading the dashboard on its first view.
func (h *DashboardHandler) show(w http.ResponseWriter, r *http.Request, page, title string) {
	d := h.dashboard(r)
	flashes := h.sessions.Flashes(w, r)
	if d.NeedsInitialLoad() {
		if err := d.Load(r.Context()); err != nil {
			flashes = append(flashes, apperrors.UserMessage(err))
		}
	}

	identity := d.Identity()
	data := views.Page{
		Title:    title,
		Path:     authz.DashboardPath(identity.Role),
		Identity: identity,
		SignedIn: true,
		Flashes:  flashes,
		View:     d.Snapshot(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page, data); err != nil {
		logging.Logger.Errorf("Event ID: RENDER_FAILED, Description: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// done sends the browser back to its dashboard, flashing err if there is one.
func (h *DashboardHandler) done(w http.ResponseWriter, r *http.Request, err error) {
	identity, _ := IdentityFrom(r.Context())
	if err != nil {
		logging.Logger.Warnf("Event ID: ACTION_FAILED, Description: %s %s by %s: %v", r.Method, r.URL.Path, identity.Username, err)
		if ferr := h.sessions.AddFlash(w, r, apperrors.UserMessage(err)); ferr != nil {
			logging.Logger.Errorf("Event ID: SESSION_SAVE_FAILED, Description: %v", ferr)
		}
	}
	http.Redirect(w, r, authz.DashboardPath(identity.Role), http.StatusSeeOther)
}

func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.dashboard(r).Load(r.Context()))
}

func (h *DashboardHandler) OpenNotificationDialog(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.dashboard(r).OpenNotificationDialog(r.FormValue("projectId")))
}

func (h *DashboardHandler) CloseNotificationDialog(w http.ResponseWriter, r *http.Request) {
	h.dashboard(r).CloseNotificationDialog()
	h.done(w, r, nil)
}

func (h *DashboardHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := models.NotificationForm{
		ProjectID: strings.TrimSpace(r.PostFormValue("projectId")),
		Title:     strings.TrimSpace(r.PostFormValue("title")),
		Message:   strings.TrimSpace(r.PostFormValue("message")),
	}
	h.done(w, r, h.dashboard(r).CreateNotification(r.Context(), form))
}

// formList returns the non-empty, trimmed values of a repeated field.
func formList(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
