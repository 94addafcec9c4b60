package models

import "slices"

type Task struct {
	ID              string    `json:"id,omitempty"`
	ProjectID       string    `json:"projectId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Status          Status    `json:"status"`
	AssignedMembers []string  `json:"assignedMembers"`
	CreatedAt       Timestamp `json:"createdAt"`
}

// IsAssigned reports whether username is among the task's assignees.
func (t Task) IsAssigned(username string) bool {
	return slices.Contains(t.AssignedMembers, username)
}
