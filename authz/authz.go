// Package authz is the single authorization table consulted by routing and by
// control visibility.
package authz

import (
	"slices"

	"team-project/dashboard/models"
)

// EntryPoint is where unauthenticated or mismatched requests are sent.
const EntryPoint = "/"

type Action string

const (
	ActionCreateProject       Action = "create-project"
	ActionDeleteProject       Action = "delete-project"
	ActionCreateNotification  Action = "create-notification"
	ActionCreateTask          Action = "create-task"
	ActionUpdateProjectStatus Action = "update-project-status"
	ActionUpdateTaskStatus    Action = "update-task-status"
)

// Policy is what one role may reach.
type Policy struct {
	Dashboard string
	Actions   []Action
}

var table = map[models.Role]Policy{
	models.RoleAdmin: {
		Dashboard: "/admin",
		Actions:   []Action{ActionCreateProject, ActionDeleteProject, ActionCreateNotification},
	},
	models.RoleTeamLeader: {
		Dashboard: "/leader",
		Actions:   []Action{ActionCreateNotification, ActionCreateTask, ActionUpdateProjectStatus},
	},
	models.RoleTeamMember: {
		Dashboard: "/member",
		Actions:   []Action{ActionUpdateTaskStatus},
	},
}

// PolicyFor returns the policy of role and whether the role is known.
func PolicyFor(role models.Role) (Policy, bool) {
	p, ok := table[role]
	return p, ok
}

// DashboardPath is the landing page for role, or the entry point.
func DashboardPath(role models.Role) string {
	if p, ok := table[role]; ok {
		return p.Dashboard
	}
	return EntryPoint
}

// CanView reports whether role may open the dashboard at path.
func CanView(role models.Role, path string) bool {
	p, ok := table[role]
	return ok && p.Dashboard == path
}

// Allowed reports whether role may perform action at all.
func Allowed(role models.Role, action Action) bool {
	p, ok := table[role]
	return ok && slices.Contains(p.Actions, action)
}

func CanUpdateProjectStatus(id models.Identity, p models.Project) bool {
	return Allowed(id.Role, ActionUpdateProjectStatus) && p.TeamLeader == id.Username
}

func CanCreateTask(id models.Identity, p models.Project) bool {
	return Allowed(id.Role, ActionCreateTask) && p.TeamLeader == id.Username
}

// CanNotify: admins may notify any project, leaders only the ones they lead.
func CanNotify(id models.Identity, p models.Project) bool {
	if !Allowed(id.Role, ActionCreateNotification) {
		return false
	}
	return id.Role == models.RoleAdmin || p.TeamLeader == id.Username
}

// CanUpdateTaskStatus requires the identity to be one of the task's assignees.
func CanUpdateTaskStatus(id models.Identity, t models.Task) bool {
	return Allowed(id.Role, ActionUpdateTaskStatus) && t.IsAssigned(id.Username)
}
