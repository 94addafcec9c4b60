package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"

	"team-project/dashboard/apperrors"
	"team-project/dashboard/authz"
	"team-project/dashboard/logging"
	"team-project/dashboard/services"
	"team-project/dashboard/session"
	"team-project/dashboard/views"
)

type LoginHandler struct {
	auth       *services.AuthService
	sessions   *session.Manager
	dashboards *services.DashboardRegistry
	renderer   *views.Renderer
}

func NewLoginHandler(auth *services.AuthService, sessions *session.Manager, dashboards *services.DashboardRegistry, renderer *views.Renderer) *LoginHandler {
	return &LoginHandler{auth: auth, sessions: sessions, dashboards: dashboards, renderer: renderer}
}

// Index shows the login page, or sends a signed-in identity to its dashboard.
func (h *LoginHandler) Index(w http.ResponseWriter, r *http.Request) {
	if identity, err := h.sessions.Identity(r); err == nil && identity.Role.Valid() {
		http.Redirect(w, r, authz.DashboardPath(identity.Role), http.StatusSeeOther)
		return
	}

	page := views.Page{
		Title:    "Team Dashboard",
		Path:     authz.EntryPoint,
		Flashes:  h.sessions.Flashes(w, r),
		Username: r.URL.Query().Get("username"),
	}
	if err := h.renderer.Render(w, views.PageLogin, page); err != nil {
		logging.Logger.Errorf("Event ID: RENDER_FAILED, Description: %v", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	identity, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		h.flash(w, r, apperrors.UserMessage(err))
		http.Redirect(w, r, authz.EntryPoint+"?username="+url.QueryEscape(username), http.StatusSeeOther)
		return
	}

	// Every sign-in starts from a fresh dashboard.
	if key := h.sessions.DashboardKey(r); key != "" {
		h.dashboards.Close(key)
	}
	if err := h.sessions.SignIn(w, r, identity); err != nil {
		logging.Logger.Errorf("Event ID: SESSION_SAVE_FAILED, Description: %v", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authz.DashboardPath(identity.Role), http.StatusSeeOther)
}

// Logout drops the identity and its dashboard state.
func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if identity, err := h.sessions.Identity(r); err == nil {
		h.dashboards.Close(h.sessions.DashboardKey(r))
		logging.Logger.Infof("Event ID: LOGOUT, Description: %s signed out", identity.Username)
	}
	if err := h.sessions.SignOut(w, r); err != nil {
		logging.Logger.Errorf("Event ID: SESSION_SAVE_FAILED, Description: %v", err)
	}
	http.Redirect(w, r, authz.EntryPoint, http.StatusSeeOther)
}

func (h *LoginHandler) flash(w http.ResponseWriter, r *http.Request, message string) {
	if err := h.sessions.AddFlash(w, r, message); err != nil {
		logging.Logger.Errorf("Event ID: SESSION_SAVE_FAILED, Description: %v", err)
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
