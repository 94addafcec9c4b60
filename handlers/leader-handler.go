package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"team-project/dashboard/models"
	"team-project/dashboard/views"
)

func (h *DashboardHandler) ShowLeader(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, views.PageLeader, "Team Leader Dashboard")
}

func (h *DashboardHandler) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	status := models.Status(r.FormValue("status"))
	h.done(w, r, h.dashboard(r).UpdateProjectStatus(r.Context(), mux.Vars(r)["id"], status))
}

func (h *DashboardHandler) OpenTaskDialog(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.dashboard(r).OpenTaskDialog(mux.Vars(r)["id"]))
}

func (h *DashboardHandler) CloseTaskDialog(w http.ResponseWriter, r *http.Request) {
	h.dashboard(r).CloseTaskDialog()
	h.done(w, r, nil)
}

func (h *DashboardHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := models.TaskForm{
		Name:            strings.TrimSpace(r.PostFormValue("name")),
		Description:     strings.TrimSpace(r.PostFormValue("description")),
		AssignedMembers: formList(r.PostForm["assignedMembers"]),
	}
	h.done(w, r, h.dashboard(r).CreateTask(r.Context(), form))
}
