package models

import "slices"

type Project struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Deadline     Timestamp `json:"deadline"`
	Deliverables []string  `json:"deliverables,omitempty"`
	Status       Status    `json:"status"`
	TeamLeader   string    `json:"teamLeader"`
	TeamMembers  []string  `json:"teamMembers"`
}

// HasMember reports whether username is in the project's team.
func (p Project) HasMember(username string) bool {
	return slices.Contains(p.TeamMembers, username)
}

// FindProject returns the index of the project with the given id, or -1.
func FindProject(projects []Project, id string) int {
	return slices.IndexFunc(projects, func(p Project) bool { return p.ID == id })
}
