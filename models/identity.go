package models

import "strings"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTeamLeader Role = "teamleader"
	RoleTeamMember Role = "teammember"
)

// Valid reports whether r is one of the three dashboard roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLeader, RoleTeamMember:
		return true
	}
	return false
}

// Identity is an authenticated user as returned by /api/auth/login and /api/auth/users.
type Identity struct {
	ID         string `json:"id,omitempty"`
	Username   string `json:"username"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       Role   `json:"role"`
	Email      string `json:"email,omitempty"`
	Department string `json:"department,omitempty"`
}

func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// FilterByRole keeps the directory entries that have the given role.
func FilterByRole(users []Identity, role Role) []Identity {
	filtered := make([]Identity, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			filtered = append(filtered, u)
		}
	}
	return filtered
}
