package models

// ProjectForm holds the admin's "create project" dialog values.
type ProjectForm struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Deadline     string   `json:"deadline"`
	Deliverables []string `json:"deliverables"`
	TeamLeader   string   `json:"teamLeader" validate:"required"`
	TeamMembers  []string `json:"teamMembers"`
	Status       Status   `json:"status"`
}

// NewProjectForm returns an empty form with the default status preselected.
func NewProjectForm() ProjectForm {
	return ProjectForm{Status: StatusNotStarted}
}

// Project converts the form into a creation payload. The deadline is expected
// as a yyyy-mm-dd date; an unparsable or empty deadline is left unset.
func (f ProjectForm) Project() Project {
	status := f.Status
	if status == "" {
		status = StatusNotStarted
	}
	p := Project{
		Name:         f.Name,
		Description:  f.Description,
		Deliverables: f.Deliverables,
		Status:       status,
		TeamLeader:   f.TeamLeader,
		TeamMembers:  f.TeamMembers,
	}
	if p.TeamMembers == nil {
		p.TeamMembers = []string{}
	}
	if f.Deadline != "" {
		if ts, err := ParseTimestamp(f.Deadline); err == nil {
			p.Deadline = ts
		}
	}
	return p
}

type NotificationForm struct {
	ProjectID string `json:"projectId" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type TaskForm struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	AssignedMembers []string `json:"assignedMembers" validate:"required,min=1"`
}
