package services

import (
	"context"
	"fmt"

	"team-project/dashboard/apperrors"
	"team-project/dashboard/authz"
	"team-project/dashboard/logging"
	"team-project/dashboard/models"
)

func (d *Dashboard) authorize(action authz.Action) error {
	if !authz.Allowed(d.identity.Role, action) {
		logging.Logger.Warnf("Event ID: ACTION_FORBIDDEN, Description: %s (%s) tried %s", d.identity.Username, d.identity.Role, action)
		return fmt.Errorf("%s: %w", action, apperrors.ErrForbidden)
	}
	return nil
}

func (d *Dashboard) OpenProjectDialog() error {
	if err := d.authorize(authz.ActionCreateProject); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projectDialog = ProjectDialog{Open: true, Form: models.NewProjectForm()}
	return nil
}

func (d *Dashboard) CloseProjectDialog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projectDialog = ProjectDialog{Form: models.NewProjectForm()}
}

// CreateProject submits the project dialog. On failure the dialog stays open
// with the submitted values; on success it is reset and the dashboard reloads.
func (d *Dashboard) CreateProject(ctx context.Context, form models.ProjectForm) error {
	if err := d.authorize(authz.ActionCreateProject); err != nil {
		return err
	}
	if form.Status == "" {
		form.Status = models.StatusNotStarted
	}

	d.setProjectDialog(form, nil)
	if err := forms.Check(form); err != nil {
		d.setProjectDialog(form, err)
		return err
	}

	created, err := d.backend.CreateProject(ctx, d.identity.Username, form.Project())
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_CREATE_FAILED, Description: %s: %v", form.Name, err)
		d.setProjectDialog(form, err)
		return fmt.Errorf("create project: %w", err)
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: %s created project %s (%s)", d.identity.Username, created.Name, created.ID)

	d.CloseProjectDialog()
	if err := d.Load(ctx); err != nil {
		logging.Logger.Warnf("Event ID: DASHBOARD_RELOAD_FAILED, Description: after project create: %v", err)
	}
	return nil
}

func (d *Dashboard) setProjectDialog(form models.ProjectForm, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.projectDialog = ProjectDialog{Open: true, Form: form, Err: err}
}

// RequestDelete asks for confirmation before the project is deleted.
func (d *Dashboard) RequestDelete(projectID string) error {
	if err := d.authorize(authz.ActionDeleteProject); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.findProject(projectID); !ok {
		return fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	d.pendingDelete = projectID
	return nil
}

func (d *Dashboard) CancelDelete() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pendingDelete = ""
}

// ConfirmDelete deletes the pending project. The confirmation is cleared
// whatever the outcome.
func (d *Dashboard) ConfirmDelete(ctx context.Context) error {
	if err := d.authorize(authz.ActionDeleteProject); err != nil {
		return err
	}

	d.mu.Lock()
	projectID := d.pendingDelete
	d.pendingDelete = ""
	d.mu.Unlock()
	if projectID == "" {
		return apperrors.ErrNoPendingDelete
	}

	if err := d.backend.DeleteProject(ctx, d.identity.Username, projectID); err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_DELETE_FAILED, Description: %s: %v", projectID, err)
		return fmt.Errorf("delete project %s: %w", projectID, err)
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: %s deleted project %s", d.identity.Username, projectID)

	if err := d.Load(ctx); err != nil {
		logging.Logger.Warnf("Event ID: DASHBOARD_RELOAD_FAILED, Description: after project delete: %v", err)
	}
	return nil
}

// OpenNotificationDialog resets the dialog, preselecting projectID when given.
func (d *Dashboard) OpenNotificationDialog(projectID string) error {
	if err := d.authorize(authz.ActionCreateNotification); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if projectID != "" {
		p, ok := d.findProject(projectID)
		if !ok {
			return fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
		}
		if !authz.CanNotify(d.identity, p) {
			return fmt.Errorf("notify %s: %w", projectID, apperrors.ErrForbidden)
		}
	}
	d.notificationDialog = NotificationDialog{Open: true, Form: models.NotificationForm{ProjectID: projectID}}
	return nil
}

func (d *Dashboard) CloseNotificationDialog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notificationDialog = NotificationDialog{}
}

// CreateNotification posts an announcement signed by the current identity.
// Team leaders then refresh that project's notifications; admins keep none.
func (d *Dashboard) CreateNotification(ctx context.Context, form models.NotificationForm) error {
	if err := d.authorize(authz.ActionCreateNotification); err != nil {
		return err
	}

	d.setNotificationDialog(form, nil)
	if err := forms.Check(form); err != nil {
		d.setNotificationDialog(form, err)
		return err
	}

	d.mu.Lock()
	project, ok := d.findProject(form.ProjectID)
	d.mu.Unlock()
	if !ok {
		err := fmt.Errorf("project %s: %w", form.ProjectID, apperrors.ErrNotFound)
		d.setNotificationDialog(form, err)
		return err
	}
	if !authz.CanNotify(d.identity, project) {
		err := fmt.Errorf("notify %s: %w", project.ID, apperrors.ErrForbidden)
		d.setNotificationDialog(form, err)
		return err
	}

	created, err := d.backend.CreateNotification(ctx, d.identity.Username, models.Notification{
		ProjectID: project.ID,
		Title:     form.Title,
		Message:   form.Message,
		Sender:    d.identity.Username,
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_CREATE_FAILED, Description: project %s: %v", project.ID, err)
		d.setNotificationDialog(form, err)
		return fmt.Errorf("create notification: %w", err)
	}
	logging.Logger.Infof("Event ID: NOTIFICATION_CREATED, Description: %s notified project %s (%s)", d.identity.Username, project.ID, created.ID)

	d.CloseNotificationDialog()
	if d.identity.Role == models.RoleTeamLeader {
		if err := d.RefreshNotifications(ctx, project.ID); err != nil {
			logging.Logger.Warnf("Event ID: NOTIFICATIONS_REFRESH_FAILED, Description: project %s: %v", project.ID, err)
		}
	}
	return nil
}

func (d *Dashboard) setNotificationDialog(form models.NotificationForm, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notificationDialog = NotificationDialog{Open: true, Form: form, Err: err}
}

// RefreshNotifications re-fetches the notifications of one project only.
func (d *Dashboard) RefreshNotifications(ctx context.Context, projectID string) error {
	notifications, err := d.backend.ListNotifications(ctx, projectID)
	if err != nil {
		return fmt.Errorf("refresh notifications of %s: %w", projectID, err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.findProject(projectID); !ok {
		return nil
	}
	d.notifications[projectID] = notifications
	return nil
}

// OpenTaskDialog opens an empty task form for projectID.
func (d *Dashboard) OpenTaskDialog(projectID string) error {
	if err := d.authorize(authz.ActionCreateTask); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.findProject(projectID)
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	if !authz.CanCreateTask(d.identity, p) {
		return fmt.Errorf("create task in %s: %w", projectID, apperrors.ErrForbidden)
	}
	d.taskDialog = TaskDialog{Open: true, ProjectID: projectID}
	return nil
}

func (d *Dashboard) CloseTaskDialog() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.taskDialog = TaskDialog{}
}

// CreateTask submits the open task dialog. The returned task is appended to
// the project's list without a re-fetch.
func (d *Dashboard) CreateTask(ctx context.Context, form models.TaskForm) error {
	if err := d.authorize(authz.ActionCreateTask); err != nil {
		return err
	}

	d.mu.Lock()
	if !d.taskDialog.Open {
		d.mu.Unlock()
		return apperrors.ErrDialogClosed
	}
	projectID := d.taskDialog.ProjectID
	d.taskDialog.Form = form
	d.taskDialog.Err = nil
	project, ok := d.findProject(projectID)
	d.mu.Unlock()

	if !ok {
		err := fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
		d.setTaskDialogErr(err)
		return err
	}
	if !authz.CanCreateTask(d.identity, project) {
		err := fmt.Errorf("create task in %s: %w", projectID, apperrors.ErrForbidden)
		d.setTaskDialogErr(err)
		return err
	}
	if err := forms.Check(form); err != nil {
		d.setTaskDialogErr(err)
		return err
	}
	for _, member := range form.AssignedMembers {
		if !project.HasMember(member) {
			err := apperrors.NewValidationError(apperrors.FieldError{
				Field:   "assignedMembers",
				Message: "must belong to the project team",
			})
			d.setTaskDialogErr(err)
			return err
		}
	}

	created, err := d.backend.CreateTask(ctx, d.identity.Username, models.Task{
		ProjectID:       projectID,
		Name:            form.Name,
		Description:     form.Description,
		AssignedMembers: form.AssignedMembers,
	})
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_CREATE_FAILED, Description: project %s: %v", projectID, err)
		d.setTaskDialogErr(err)
		return fmt.Errorf("create task: %w", err)
	}
	if created.ProjectID == "" {
		created.ProjectID = projectID
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: %s created task %s in project %s", d.identity.Username, created.ID, projectID)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.findProject(projectID); ok {
		d.tasks[projectID] = append(d.tasks[projectID], created)
	}
	d.taskDialog = TaskDialog{}
	return nil
}

func (d *Dashboard) setTaskDialogErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.taskDialog.Err = err
}

// UpdateProjectStatus sets the status of a project the identity leads. Only
// that project's status is replaced, with the value the server echoes.
func (d *Dashboard) UpdateProjectStatus(ctx context.Context, projectID string, status models.Status) error {
	if err := d.authorize(authz.ActionUpdateProjectStatus); err != nil {
		return err
	}

	d.mu.Lock()
	project, ok := d.findProject(projectID)
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("project %s: %w", projectID, apperrors.ErrNotFound)
	}
	if !authz.CanUpdateProjectStatus(d.identity, project) {
		return fmt.Errorf("status of %s: %w", projectID, apperrors.ErrForbidden)
	}
	if status == "" {
		return apperrors.NewValidationError(apperrors.FieldError{Field: "status", Message: requiredText})
	}

	updated, err := d.backend.UpdateProjectStatus(ctx, d.identity.Username, projectID, status)
	if err != nil {
		logging.Logger.Errorf("Event ID: PROJECT_STATUS_UPDATE_FAILED, Description: project %s: %v", projectID, err)
		return fmt.Errorf("update project status: %w", err)
	}
	if updated.Status == "" {
		updated.Status = status
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if idx := models.FindProject(d.projects, projectID); idx >= 0 {
		d.projects[idx].Status = updated.Status
	}
	logging.Logger.Infof("Event ID: PROJECT_STATUS_UPDATED, Description: project %s is now %s", projectID, updated.Status)
	return nil
}

// UpdateTaskStatus sets the status of a task assigned to the identity.
func (d *Dashboard) UpdateTaskStatus(ctx context.Context, projectID, taskID string, status models.Status) error {
	if err := d.authorize(authz.ActionUpdateTaskStatus); err != nil {
		return err
	}

	d.mu.Lock()
	task, ok := d.findTask(projectID, taskID)
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("task %s: %w", taskID, apperrors.ErrNotFound)
	}
	if !authz.CanUpdateTaskStatus(d.identity, task) {
		return fmt.Errorf("status of task %s: %w", taskID, apperrors.ErrForbidden)
	}
	if status == "" {
		return apperrors.NewValidationError(apperrors.FieldError{Field: "status", Message: requiredText})
	}

	updated, err := d.backend.UpdateTaskStatus(ctx, d.identity.Username, taskID, status)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_STATUS_UPDATE_FAILED, Description: task %s: %v", taskID, err)
		return fmt.Errorf("update task status: %w", err)
	}
	if updated.Status == "" {
		updated.Status = status
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.tasks[projectID] {
		if d.tasks[projectID][i].ID == taskID {
			d.tasks[projectID][i].Status = updated.Status
		}
	}
	logging.Logger.Infof("Event ID: TASK_STATUS_UPDATED, Description: task %s is now %s", taskID, updated.Status)
	return nil
}

// findTask must be called with mu held.
func (d *Dashboard) findTask(projectID, taskID string) (models.Task, bool) {
	for _, t := range d.tasks[projectID] {
		if t.ID == taskID {
			return t, true
		}
	}
	return models.Task{}, false
}
