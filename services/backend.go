package services

import (
	"context"

	"team-project/dashboard/models"
)

// Backend is the part of the REST backend the dashboards read and mutate.
// Mutations carry the acting username.
type Backend interface {
	ListUsers(ctx context.Context) ([]models.Identity, error)
	ListAllProjects(ctx context.Context) ([]models.Project, error)
	ListProjectsByTeamLeader(ctx context.Context, username string) ([]models.Project, error)
	ListProjectsByTeamMember(ctx context.Context, username string) ([]models.Project, error)
	CreateProject(ctx context.Context, actor string, project models.Project) (models.Project, error)
	UpdateProjectStatus(ctx context.Context, actor, projectID string, status models.Status) (models.Project, error)
	DeleteProject(ctx context.Context, actor, projectID string) error

	ListNotifications(ctx context.Context, projectID string) ([]models.Notification, error)
	CreateNotification(ctx context.Context, actor string, n models.Notification) (models.Notification, error)

	ListTasks(ctx context.Context, projectID string) ([]models.Task, error)
	CreateTask(ctx context.Context, actor string, task models.Task) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, actor, taskID string, status models.Status) (models.Task, error)
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.Identity, error)
}
