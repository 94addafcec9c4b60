package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"team-project/dashboard/models"
	"team-project/dashboard/views"
)

func (h *DashboardHandler) ShowAdmin(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, views.PageAdmin, "Admin Dashboard")
}

func (h *DashboardHandler) OpenProjectDialog(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.dashboard(r).OpenProjectDialog())
}

func (h *DashboardHandler) CloseProjectDialog(w http.ResponseWriter, r *http.Request) {
	h.dashboard(r).CloseProjectDialog()
	h.done(w, r, nil)
}

func (h *DashboardHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	form := models.ProjectForm{
		Name:         strings.TrimSpace(r.PostFormValue("name")),
		Description:  strings.TrimSpace(r.PostFormValue("description")),
		Deadline:     strings.TrimSpace(r.PostFormValue("deadline")),
		Deliverables: formList(strings.Split(r.PostFormValue("deliverables"), "\n")),
		TeamLeader:   strings.TrimSpace(r.PostFormValue("teamLeader")),
		TeamMembers:  formList(r.PostForm["teamMembers"]),
		Status:       models.Status(r.PostFormValue("status")),
	}
	h.done(w, r, h.dashboard(r).CreateProject(r.Context(), form))
}

func (h *DashboardHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.dashboard(r).RequestDelete(mux.Vars(r)["id"]))
}

func (h *DashboardHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.dashboard(r).CancelDelete()
	h.done(w, r, nil)
}

func (h *DashboardHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	h.done(w, r, h.dashboard(r).ConfirmDelete(r.Context()))
}
