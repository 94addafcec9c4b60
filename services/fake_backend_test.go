package services

import (
	"context"
	"errors"
	"sync"

	"team-project/dashboard/models"
)

var errBackendDown = errors.New("connection refused")

// fakeBackend serves canned data and records mutations.
type fakeBackend struct {
	mu sync.Mutex

	users            []models.Identity
	usersErr         error
	projects         []models.Project
	projectsErr      error
	tasks            map[string][]models.Task
	tasksErr         map[string]error
	notifications    map[string][]models.Notification
	notificationsErr map[string]error

	// projectsGate, when set, blocks the next project list call until closed.
	projectsGate chan struct{}

	createProjectErr      error
	createNotificationErr error
	createTaskErr         error
	deleteErr             error
	statusEcho            models.Status

	calls              []string
	createdProjects    []models.Project
	createdNotes       []models.Notification
	createdTasks       []models.Task
	deleted            []string
	projectListCalls   int
	notificationsCalls map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		tasks:              map[string][]models.Task{},
		tasksErr:           map[string]error{},
		notifications:      map[string][]models.Notification{},
		notificationsErr:   map[string]error{},
		notificationsCalls: map[string]int{},
	}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) mutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		switch c {
		case "CreateProject", "UpdateProjectStatus", "DeleteProject", "CreateNotification", "CreateTask", "UpdateTaskStatus":
			n++
		}
	}
	return n
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]models.Identity, error) {
	f.record("ListUsers")
	return f.users, f.usersErr
}

func (f *fakeBackend) listProjects() ([]models.Project, error) {
	f.mu.Lock()
	gate := f.projectsGate
	f.projectsGate = nil
	f.projectListCalls++
	projects, err := f.projects, f.projectsErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return projects, err
}

func (f *fakeBackend) ListAllProjects(ctx context.Context) ([]models.Project, error) {
	f.record("ListAllProjects")
	return f.listProjects()
}

func (f *fakeBackend) ListProjectsByTeamLeader(ctx context.Context, username string) ([]models.Project, error) {
	f.record("ListProjectsByTeamLeader")
	return f.listProjects()
}

func (f *fakeBackend) ListProjectsByTeamMember(ctx context.Context, username string) ([]models.Project, error) {
	f.record("ListProjectsByTeamMember")
	return f.listProjects()
}

func (f *fakeBackend) CreateProject(ctx context.Context, actor string, project models.Project) (models.Project, error) {
	f.record("CreateProject")
	if f.createProjectErr != nil {
		return models.Project{}, f.createProjectErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	project.ID = "new-project"
	f.createdProjects = append(f.createdProjects, project)
	f.projects = append(f.projects, project)
	return project, nil
}

func (f *fakeBackend) UpdateProjectStatus(ctx context.Context, actor, projectID string, status models.Status) (models.Project, error) {
	f.record("UpdateProjectStatus")
	echo := status
	if f.statusEcho != "" {
		echo = f.statusEcho
	}
	return models.Project{ID: projectID, Status: echo}, nil
}

func (f *fakeBackend) DeleteProject(ctx context.Context, actor, projectID string) error {
	f.record("DeleteProject")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, projectID)
	if idx := models.FindProject(f.projects, projectID); idx >= 0 {
		f.projects = append(f.projects[:idx:idx], f.projects[idx+1:]...)
	}
	return nil
}

func (f *fakeBackend) ListNotifications(ctx context.Context, projectID string) ([]models.Notification, error) {
	f.record("ListNotifications")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notificationsCalls[projectID]++
	return f.notifications[projectID], f.notificationsErr[projectID]
}

func (f *fakeBackend) CreateNotification(ctx context.Context, actor string, n models.Notification) (models.Notification, error) {
	f.record("CreateNotification")
	if f.createNotificationErr != nil {
		return models.Notification{}, f.createNotificationErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = "n-new"
	f.createdNotes = append(f.createdNotes, n)
	f.notifications[n.ProjectID] = append(f.notifications[n.ProjectID], n)
	return n, nil
}

func (f *fakeBackend) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	f.record("ListTasks")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[projectID], f.tasksErr[projectID]
}

func (f *fakeBackend) CreateTask(ctx context.Context, actor string, task models.Task) (models.Task, error) {
	f.record("CreateTask")
	if f.createTaskErr != nil {
		return models.Task{}, f.createTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = "t-new"
	task.Status = models.StatusNotStarted
	f.createdTasks = append(f.createdTasks, task)
	return task, nil
}

func (f *fakeBackend) UpdateTaskStatus(ctx context.Context, actor, taskID string, status models.Status) (models.Task, error) {
	f.record("UpdateTaskStatus")
	echo := status
	if f.statusEcho != "" {
		echo = f.statusEcho
	}
	return models.Task{ID: taskID, Status: echo}, nil
}

var (
	admin  = models.Identity{Username: "root", FirstName: "Ada", Role: models.RoleAdmin}
	alice  = models.Identity{Username: "alice", FirstName: "Alice", Role: models.RoleTeamLeader}
	carol  = models.Identity{Username: "carol", FirstName: "Carol", Role: models.RoleTeamMember}
	eve    = models.Identity{Username: "eve", FirstName: "Eve", Role: models.RoleTeamMember}
	projP  = models.Project{ID: "P", Name: "Apollo", TeamLeader: "alice", TeamMembers: []string{"carol", "dave", "eve"}, Status: models.StatusInProgress}
	projQ  = models.Project{ID: "Q", Name: "Borealis", TeamLeader: "bob", TeamMembers: []string{"carol"}, Status: models.StatusNotStarted}
	taskT1 = models.Task{ID: "T1", ProjectID: "P", Name: "Design", AssignedMembers: []string{"carol"}, Status: models.StatusNotStarted}
)
