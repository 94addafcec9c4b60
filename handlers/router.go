package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"team-project/dashboard/authz"
	"team-project/dashboard/models"
	"team-project/dashboard/services"
	"team-project/dashboard/session"
	"team-project/dashboard/views"
)

type RouterConfig struct {
	Auth       *services.AuthService
	Sessions   *session.Manager
	Dashboards *services.DashboardRegistry
	Renderer   *views.Renderer
}

func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	login := NewLoginHandler(cfg.Auth, cfg.Sessions, cfg.Dashboards, cfg.Renderer)
	router.HandleFunc("/", login.Index).Methods(http.MethodGet)
	router.HandleFunc("/login", login.Login).Methods(http.MethodPost)
	router.HandleFunc("/logout", login.Logout).Methods(http.MethodPost)
	router.HandleFunc("/health", Health).Methods(http.MethodGet)

	dashboard := NewDashboardHandler(cfg.Sessions, cfg.Dashboards, cfg.Renderer)

	admin := subrouter(router, cfg.Sessions, models.RoleAdmin)
	admin.HandleFunc("", dashboard.ShowAdmin).Methods(http.MethodGet)
	admin.HandleFunc("/refresh", dashboard.Refresh).Methods(http.MethodPost)
	admin.HandleFunc("/projects/dialog", dashboard.OpenProjectDialog).Methods(http.MethodPost)
	admin.HandleFunc("/projects/dialog/close", dashboard.CloseProjectDialog).Methods(http.MethodPost)
	admin.HandleFunc("/projects", dashboard.CreateProject).Methods(http.MethodPost)
	admin.HandleFunc("/projects/{id}/delete", dashboard.RequestDelete).Methods(http.MethodPost)
	admin.HandleFunc("/delete/cancel", dashboard.CancelDelete).Methods(http.MethodPost)
	admin.HandleFunc("/delete/confirm", dashboard.ConfirmDelete).Methods(http.MethodPost)
	admin.HandleFunc("/notifications/dialog", dashboard.OpenNotificationDialog).Methods(http.MethodPost)
	admin.HandleFunc("/notifications/dialog/close", dashboard.CloseNotificationDialog).Methods(http.MethodPost)
	admin.HandleFunc("/notifications", dashboard.CreateNotification).Methods(http.MethodPost)

	leader := subrouter(router, cfg.Sessions, models.RoleTeamLeader)
	leader.HandleFunc("", dashboard.ShowLeader).Methods(http.MethodGet)
	leader.HandleFunc("/refresh", dashboard.Refresh).Methods(http.MethodPost)
	leader.HandleFunc("/projects/{id}/status", dashboard.UpdateProjectStatus).Methods(http.MethodPost)
	leader.HandleFunc("/notifications/dialog", dashboard.OpenNotificationDialog).Methods(http.MethodPost)
	leader.HandleFunc("/notifications/dialog/close", dashboard.CloseNotificationDialog).Methods(http.MethodPost)
	leader.HandleFunc("/notifications", dashboard.CreateNotification).Methods(http.MethodPost)
	leader.HandleFunc("/projects/{id}/tasks/dialog", dashboard.OpenTaskDialog).Methods(http.MethodPost)
	leader.HandleFunc("/tasks/dialog/close", dashboard.CloseTaskDialog).Methods(http.MethodPost)
	leader.HandleFunc("/tasks", dashboard.CreateTask).Methods(http.MethodPost)

	member := subrouter(router, cfg.Sessions, models.RoleTeamMember)
	member.HandleFunc("", dashboard.ShowMember).Methods(http.MethodGet)
	member.HandleFunc("/refresh", dashboard.Refresh).Methods(http.MethodPost)
	member.HandleFunc("/projects/{projectId}/tasks/{taskId}/status", dashboard.UpdateTaskStatus).Methods(http.MethodPost)

	return router
}

// subrouter mounts the dashboard of role behind its guard.
func subrouter(router *mux.Router, sessions *session.Manager, role models.Role) *mux.Router {
	path := authz.DashboardPath(role)
	sub := router.PathPrefix(path).Subrouter()
	sub.Use(RequireDashboard(sessions, path))
	return sub
}
