package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"team-project/dashboard/models"
	"team-project/dashboard/views"
)

func (h *DashboardHandler) ShowMember(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, views.PageMember, "Team Member Dashboard")
}

func (h *DashboardHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	status := models.Status(r.FormValue("status"))
	h.done(w, r, h.dashboard(r).UpdateTaskStatus(r.Context(), vars["projectId"], vars["taskId"], status))
}
