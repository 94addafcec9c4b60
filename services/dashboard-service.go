package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"team-project/dashboard/authz"
	"team-project/dashboard/logging"
	"team-project/dashboard/models"
)

var forms = newFormValidator()

type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
	LoadFailed  LoadState = "failed"
)

// Aggregate is the load status of one collection (projects, tasks, ...).
// Degraded lists the projects whose entry fell back to an empty list.
type Aggregate struct {
	State    LoadState
	Err      error
	LoadedAt time.Time
	Degraded []string
}

func (a Aggregate) IsDegraded(projectID string) bool {
	return slices.Contains(a.Degraded, projectID)
}

type ProjectDialog struct {
	Open bool
	Form models.ProjectForm
	Err  error
}

type NotificationDialog struct {
	Open bool
	Form models.NotificationForm
	Err  error
}

type TaskDialog struct {
	Open      bool
	ProjectID string
	Form      models.TaskForm
	Err       error
}

// Dashboard is the state behind one signed-in identity's dashboard page.
// All fields below mu are guarded by it; backend calls never hold the lock.
type Dashboard struct {
	backend     Backend
	identity    models.Identity
	concurrency int

	mu            sync.Mutex
	generation    uint64
	attempted     bool
	projects      []models.Project
	tasks         map[string][]models.Task
	notifications map[string][]models.Notification
	users         []models.Identity

	projectsStatus      Aggregate
	tasksStatus         Aggregate
	notificationsStatus Aggregate
	usersStatus         Aggregate

	projectDialog      ProjectDialog
	notificationDialog NotificationDialog
	taskDialog         TaskDialog
	pendingDelete      string
}

func NewDashboard(backend Backend, identity models.Identity, concurrency int) *Dashboard {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dashboard{
		backend:             backend,
		identity:            identity,
		concurrency:         concurrency,
		projects:            []models.Project{},
		tasks:               map[string][]models.Task{},
		notifications:       map[string][]models.Notification{},
		users:               []models.Identity{},
		projectsStatus:      Aggregate{State: LoadIdle},
		tasksStatus:         Aggregate{State: LoadIdle},
		notificationsStatus: Aggregate{State: LoadIdle},
		usersStatus:         Aggregate{State: LoadIdle},
		projectDialog:       ProjectDialog{Form: models.NewProjectForm()},
	}
}

func (d *Dashboard) Identity() models.Identity {
	return d.identity
}

// NeedsInitialLoad is true until the first Load has been started.
func (d *Dashboard) NeedsInitialLoad() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.attempted
}

// Load fetches everything the identity's dashboard shows and swaps it into
// state in one step. A load that finishes after a newer one started is
// dropped. A failed project list keeps the previous state on screen.
func (d *Dashboard) Load(ctx context.Context) error {
	d.mu.Lock()
	d.generation++
	gen := d.generation
	d.attempted = true
	d.projectsStatus.State = LoadLoading
	if d.identity.Role == models.RoleAdmin {
		d.usersStatus.State = LoadLoading
	}
	d.mu.Unlock()

	if d.identity.Role == models.RoleAdmin {
		return d.loadAdmin(ctx, gen)
	}
	return d.loadTeam(ctx, gen)
}

func (d *Dashboard) loadAdmin(ctx context.Context, gen uint64) error {
	var (
		projects    []models.Project
		projectsErr error
		users       []models.Identity
		usersErr    error
	)

	var g errgroup.Group
	g.Go(func() error {
		projects, projectsErr = d.backend.ListAllProjects(ctx)
		return nil
	})
	g.Go(func() error {
		users, usersErr = d.backend.ListUsers(ctx)
		return nil
	})
	_ = g.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.superseded(gen) {
		return nil
	}

	now := time.Now()
	if usersErr != nil {
		logging.Logger.Errorf("Event ID: USERS_FETCH_FAILED, Description: %v", usersErr)
		d.usersStatus = Aggregate{State: LoadFailed, Err: usersErr, LoadedAt: d.usersStatus.LoadedAt}
	} else {
		d.users = users
		d.usersStatus = Aggregate{State: LoadLoaded, LoadedAt: now}
	}

	if projectsErr != nil {
		return d.failProjects(projectsErr)
	}
	d.projects = projects
	d.projectsStatus = Aggregate{State: LoadLoaded, LoadedAt: now}
	logging.Logger.Debugf("Event ID: DASHBOARD_LOADED, Description: %s loaded %d projects, %d users", d.identity.Username, len(projects), len(users))
	return nil
}

type projectContent struct {
	tasks            []models.Task
	tasksErr         error
	notifications    []models.Notification
	notificationsErr error
}

func (d *Dashboard) loadTeam(ctx context.Context, gen uint64) error {
	projects, err := d.listOwnProjects(ctx)
	if err != nil {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.superseded(gen) {
			return nil
		}
		return d.failProjects(err)
	}

	contents := make([]projectContent, len(projects))
	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, p := range projects {
		g.Go(func() error {
			// Both lists of one project land together.
			var inner errgroup.Group
			inner.Go(func() error {
				contents[i].tasks, contents[i].tasksErr = d.backend.ListTasks(ctx, p.ID)
				return nil
			})
			inner.Go(func() error {
				contents[i].notifications, contents[i].notificationsErr = d.backend.ListNotifications(ctx, p.ID)
				return nil
			})
			return inner.Wait()
		})
	}
	_ = g.Wait()

	tasks := make(map[string][]models.Task, len(projects))
	notifications := make(map[string][]models.Notification, len(projects))
	var tasksDegraded, notificationsDegraded []string
	var tasksErrs, notificationsErrs []error
	for i, p := range projects {
		c := contents[i]
		if c.tasksErr != nil {
			logging.Logger.Errorf("Event ID: TASKS_FETCH_FAILED, Description: project %s: %v", p.ID, c.tasksErr)
			tasksDegraded = append(tasksDegraded, p.ID)
			tasksErrs = append(tasksErrs, fmt.Errorf("tasks of %s: %w", p.ID, c.tasksErr))
			c.tasks = nil
		}
		if c.notificationsErr != nil {
			logging.Logger.Errorf("Event ID: NOTIFICATIONS_FETCH_FAILED, Description: project %s: %v", p.ID, c.notificationsErr)
			notificationsDegraded = append(notificationsDegraded, p.ID)
			notificationsErrs = append(notificationsErrs, fmt.Errorf("notifications of %s: %w", p.ID, c.notificationsErr))
			c.notifications = nil
		}
		if c.tasks == nil {
			c.tasks = []models.Task{}
		}
		if c.notifications == nil {
			c.notifications = []models.Notification{}
		}
		tasks[p.ID] = c.tasks
		notifications[p.ID] = c.notifications
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.superseded(gen) {
		return nil
	}

	now := time.Now()
	d.projects = projects
	d.tasks = tasks
	d.notifications = notifications
	d.projectsStatus = Aggregate{State: LoadLoaded, LoadedAt: now}
	d.tasksStatus = Aggregate{State: LoadLoaded, LoadedAt: now, Degraded: tasksDegraded, Err: errors.Join(tasksErrs...)}
	d.notificationsStatus = Aggregate{State: LoadLoaded, LoadedAt: now, Degraded: notificationsDegraded, Err: errors.Join(notificationsErrs...)}
	logging.Logger.Debugf("Event ID: DASHBOARD_LOADED, Description: %s loaded %d projects", d.identity.Username, len(projects))
	return nil
}

// listOwnProjects fetches the role-scoped list and keeps only the projects the
// identity actually leads or belongs to.
func (d *Dashboard) listOwnProjects(ctx context.Context) ([]models.Project, error) {
	var (
		projects []models.Project
		err      error
	)
	switch d.identity.Role {
	case models.RoleTeamLeader:
		projects, err = d.backend.ListProjectsByTeamLeader(ctx, d.identity.Username)
	case models.RoleTeamMember:
		projects, err = d.backend.ListProjectsByTeamMember(ctx, d.identity.Username)
	default:
		return nil, fmt.Errorf("no project scope for role %q", d.identity.Role)
	}
	if err != nil {
		return nil, err
	}

	own := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if d.visible(p) {
			own = append(own, p)
		}
	}
	return own, nil
}

func (d *Dashboard) visible(p models.Project) bool {
	switch d.identity.Role {
	case models.RoleAdmin:
		return true
	case models.RoleTeamLeader:
		return p.TeamLeader == d.identity.Username
	case models.RoleTeamMember:
		return p.HasMember(d.identity.Username)
	}
	return false
}

// superseded must be called with mu held.
func (d *Dashboard) superseded(gen uint64) bool {
	if gen == d.generation {
		return false
	}
	logging.Logger.Debugf("Event ID: DASHBOARD_LOAD_DISCARDED, Description: load %d of %s superseded by %d", gen, d.identity.Username, d.generation)
	return true
}

// failProjects must be called with mu held.
func (d *Dashboard) failProjects(err error) error {
	logging.Logger.Errorf("Event ID: PROJECTS_FETCH_FAILED, Description: %s: %v", d.identity.Username, err)
	d.projectsStatus = Aggregate{State: LoadFailed, Err: err, LoadedAt: d.projectsStatus.LoadedAt}
	return fmt.Errorf("load projects: %w", err)
}

type TaskView struct {
	models.Task
	CanUpdateStatus bool
}

type ProjectView struct {
	models.Project
	Tasks         []TaskView
	Notifications []models.Notification
	// Degraded is set when tasks or notifications of this project could not be fetched.
	Degraded        bool
	CanUpdateStatus bool
	CanCreateTask   bool
	CanNotify       bool
	CanDelete       bool
}

// View is a copy of the dashboard state for rendering.
type View struct {
	Identity models.Identity
	Projects []ProjectView
	Statuses []models.Status

	Users       []models.Identity
	TeamLeaders []models.Identity
	TeamMembers []models.Identity

	ProjectsStatus      Aggregate
	TasksStatus         Aggregate
	NotificationsStatus Aggregate
	UsersStatus         Aggregate

	CanCreateProject bool
	CanNotify        bool

	ProjectDialog      ProjectDialog
	NotificationDialog NotificationDialog
	TaskDialog         TaskDialog
	// TaskDialogProject is the project the task dialog picks members from.
	TaskDialogProject *models.Project
	PendingDelete     *models.Project
}

func (d *Dashboard) Snapshot() View {
	d.mu.Lock()
	defer d.mu.Unlock()

	v := View{
		Identity:            d.identity,
		Projects:            make([]ProjectView, 0, len(d.projects)),
		Statuses:            models.Statuses(),
		Users:               slices.Clone(d.users),
		TeamLeaders:         models.FilterByRole(d.users, models.RoleTeamLeader),
		TeamMembers:         models.FilterByRole(d.users, models.RoleTeamMember),
		ProjectsStatus:      d.projectsStatus,
		TasksStatus:         d.tasksStatus,
		NotificationsStatus: d.notificationsStatus,
		UsersStatus:         d.usersStatus,
		CanCreateProject:    authz.Allowed(d.identity.Role, authz.ActionCreateProject),
		CanNotify:           authz.Allowed(d.identity.Role, authz.ActionCreateNotification),
		ProjectDialog:       d.projectDialog,
		NotificationDialog:  d.notificationDialog,
		TaskDialog:          d.taskDialog,
	}

	for _, p := range d.projects {
		pv := ProjectView{
			Project:         p,
			Tasks:           make([]TaskView, 0, len(d.tasks[p.ID])),
			Notifications:   slices.Clone(d.notifications[p.ID]),
			Degraded:        d.tasksStatus.IsDegraded(p.ID) || d.notificationsStatus.IsDegraded(p.ID),
			CanUpdateStatus: authz.CanUpdateProjectStatus(d.identity, p),
			CanCreateTask:   authz.CanCreateTask(d.identity, p),
			CanNotify:       authz.CanNotify(d.identity, p),
			CanDelete:       authz.Allowed(d.identity.Role, authz.ActionDeleteProject),
		}
		for _, t := range d.tasks[p.ID] {
			pv.Tasks = append(pv.Tasks, TaskView{Task: t, CanUpdateStatus: authz.CanUpdateTaskStatus(d.identity, t)})
		}
		v.Projects = append(v.Projects, pv)

		if d.taskDialog.Open && d.taskDialog.ProjectID == p.ID {
			project := p
			v.TaskDialogProject = &project
		}
		if d.pendingDelete != "" && d.pendingDelete == p.ID {
			project := p
			v.PendingDelete = &project
		}
	}
	return v
}

// findProject must be called with mu held.
func (d *Dashboard) findProject(projectID string) (models.Project, bool) {
	idx := models.FindProject(d.projects, projectID)
	if idx < 0 {
		return models.Project{}, false
	}
	return d.projects[idx], true
}
