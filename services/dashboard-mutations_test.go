package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"team-project/dashboard/apperrors"
	"team-project/dashboard/models"
)

func loaded(t *testing.T, backend *fakeBackend, identity models.Identity) *Dashboard {
	t.Helper()
	d := NewDashboard(backend, identity, 2)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func TestCreateTaskWithoutMembersSendsNothing(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, alice)

	require.NoError(t, d.OpenTaskDialog("P"))
	err := d.CreateTask(context.Background(), models.TaskForm{Name: "Write docs"})

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Message("assignedMembers"))
	assert.Zero(t, backend.mutationCount())

	view := d.Snapshot()
	assert.True(t, view.TaskDialog.Open, "dialog stays open")
	assert.Equal(t, "Write docs", view.TaskDialog.Form.Name)
	require.NotNil(t, view.TaskDialogProject)
	assert.Equal(t, "P", view.TaskDialogProject.ID)
}

func TestCreateTaskRejectsOutsideMembers(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, alice)

	require.NoError(t, d.OpenTaskDialog("P"))
	err := d.CreateTask(context.Background(), models.TaskForm{Name: "Spy", AssignedMembers: []string{"mallory"}})
	assert.Equal(t, apperrors.KindValidation, apperrors.Classify(err))
	assert.Zero(t, backend.mutationCount())
}

func TestCreateTaskAppendsReturnedTask(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	backend.tasks["P"] = []models.Task{taskT1}
	d := loaded(t, backend, alice)

	require.NoError(t, d.OpenTaskDialog("P"))
	require.NoError(t, d.CreateTask(context.Background(), models.TaskForm{Name: "Build", AssignedMembers: []string{"dave"}}))

	view := d.Snapshot()
	assert.False(t, view.TaskDialog.Open)
	require.Len(t, view.Projects[0].Tasks, 2)
	assert.Equal(t, "t-new", view.Projects[0].Tasks[1].ID)
	assert.Equal(t, "P", view.Projects[0].Tasks[1].ProjectID)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, []string{"dave"}, backend.createdTasks[0].AssignedMembers)
}

func TestCreateTaskNeedsOpenDialog(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, alice)

	err := d.CreateTask(context.Background(), models.TaskForm{Name: "Build", AssignedMembers: []string{"dave"}})
	assert.ErrorIs(t, err, apperrors.ErrDialogClosed)
}

func TestOpenTaskDialogResetsForm(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, alice)

	require.NoError(t, d.OpenTaskDialog("P"))
	_ = d.CreateTask(context.Background(), models.TaskForm{Name: "Half done"})
	require.NoError(t, d.OpenTaskDialog("P"))
	assert.Empty(t, d.Snapshot().TaskDialog.Form.Name)
	assert.Nil(t, d.Snapshot().TaskDialog.Err)
}

func TestUpdateProjectStatusUsesServerEcho(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP, {ID: "P2", TeamLeader: "alice", Status: models.StatusNotStarted}}
	backend.statusEcho = models.StatusCompleted
	d := loaded(t, backend, alice)

	require.NoError(t, d.UpdateProjectStatus(context.Background(), "P", models.StatusUnderReview))

	view := d.Snapshot()
	assert.Equal(t, models.StatusCompleted, view.Projects[0].Status)
	assert.Equal(t, models.StatusNotStarted, view.Projects[1].Status, "other projects are untouched")
}

func TestUpdateProjectStatusAllowsAnyTransition(t *testing.T) {
	backend := newFakeBackend()
	done := projP
	done.Status = models.StatusCompleted
	backend.projects = []models.Project{done}
	d := loaded(t, backend, alice)

	require.NoError(t, d.UpdateProjectStatus(context.Background(), "P", models.StatusNotStarted))
	assert.Equal(t, models.StatusNotStarted, d.Snapshot().Projects[0].Status)
}

func TestMemberCannotUpdateProjectStatus(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, carol)

	err := d.UpdateProjectStatus(context.Background(), "P", models.StatusCompleted)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, backend.mutationCount())
}

func TestUpdateTaskStatusRequiresAssignment(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	backend.tasks["P"] = []models.Task{taskT1}

	eveDash := loaded(t, backend, eve)
	err := eveDash.UpdateTaskStatus(context.Background(), "P", "T1", models.StatusInProgress)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, backend.mutationCount())

	carolDash := loaded(t, backend, carol)
	require.NoError(t, carolDash.UpdateTaskStatus(context.Background(), "P", "T1", models.StatusInProgress))
	assert.Equal(t, models.StatusInProgress, carolDash.Snapshot().Projects[0].Tasks[0].Status)
	assert.Equal(t, 1, backend.mutationCount())
}

func TestDeleteCancelKeepsProject(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP, projQ}
	d := loaded(t, backend, admin)

	require.NoError(t, d.RequestDelete("P"))
	require.NotNil(t, d.Snapshot().PendingDelete)
	assert.Equal(t, "P", d.Snapshot().PendingDelete.ID)

	d.CancelDelete()
	view := d.Snapshot()
	assert.Nil(t, view.PendingDelete)
	assert.Len(t, view.Projects, 2)
	assert.Zero(t, backend.mutationCount())

	assert.ErrorIs(t, d.ConfirmDelete(context.Background()), apperrors.ErrNoPendingDelete)
}

func TestDeleteConfirmRemovesProject(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP, projQ}
	d := loaded(t, backend, admin)

	require.NoError(t, d.RequestDelete("P"))
	require.NoError(t, d.ConfirmDelete(context.Background()))

	view := d.Snapshot()
	assert.Nil(t, view.PendingDelete)
	require.Len(t, view.Projects, 1)
	assert.Equal(t, "Q", view.Projects[0].ID)
}

func TestDeleteFailureClearsConfirmation(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	backend.deleteErr = &apperrors.APIError{Method: "DELETE", Path: "/api/projects/P", StatusCode: 500}
	d := loaded(t, backend, admin)

	require.NoError(t, d.RequestDelete("P"))
	err := d.ConfirmDelete(context.Background())
	assert.Equal(t, apperrors.KindTransport, apperrors.Classify(err))

	view := d.Snapshot()
	assert.Nil(t, view.PendingDelete)
	assert.Len(t, view.Projects, 1)
}

func TestLeaderCannotDelete(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, alice)

	assert.ErrorIs(t, d.RequestDelete("P"), apperrors.ErrForbidden)
}

func TestCreateProjectFailureKeepsDialogValues(t *testing.T) {
	backend := newFakeBackend()
	backend.createProjectErr = &apperrors.APIError{Method: "POST", Path: "/api/projects", StatusCode: 400, Body: "name taken"}
	d := loaded(t, backend, admin)

	require.NoError(t, d.OpenProjectDialog())
	form := models.ProjectForm{Name: "Apollo", TeamLeader: "alice", TeamMembers: []string{"carol"}}
	err := d.CreateProject(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, "name taken", apperrors.UserMessage(err))

	dialog := d.Snapshot().ProjectDialog
	assert.True(t, dialog.Open)
	assert.Equal(t, "Apollo", dialog.Form.Name)
	assert.Equal(t, []string{"carol"}, dialog.Form.TeamMembers)
	assert.Equal(t, models.StatusNotStarted, dialog.Form.Status)
	assert.Error(t, dialog.Err)
}

func TestCreateProjectSuccessResetsAndReloads(t *testing.T) {
	backend := newFakeBackend()
	d := loaded(t, backend, admin)

	require.NoError(t, d.OpenProjectDialog())
	require.NoError(t, d.CreateProject(context.Background(), models.ProjectForm{Name: "Apollo", TeamLeader: "alice", Deadline: "2025-03-01"}))

	view := d.Snapshot()
	assert.False(t, view.ProjectDialog.Open)
	assert.Empty(t, view.ProjectDialog.Form.Name)
	assert.Equal(t, models.StatusNotStarted, view.ProjectDialog.Form.Status)
	require.Len(t, view.Projects, 1, "the new project arrives with the reload")

	backend.mu.Lock()
	defer backend.mu.Unlock()
	created := backend.createdProjects[0]
	assert.Equal(t, models.StatusNotStarted, created.Status)
	assert.Equal(t, 2025, created.Deadline.Year())
	assert.Equal(t, 2, backend.projectListCalls)
}

func TestCreateProjectRequiresNameAndLeader(t *testing.T) {
	backend := newFakeBackend()
	d := loaded(t, backend, admin)

	err := d.CreateProject(context.Background(), models.ProjectForm{})
	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, requiredText, validationErr.Message("name"))
	assert.Equal(t, requiredText, validationErr.Message("teamLeader"))
	assert.Zero(t, backend.mutationCount())
}

func TestLeaderNotificationRefreshesOnlyThatProject(t *testing.T) {
	other := models.Project{ID: "P2", Name: "Other", TeamLeader: "alice"}
	backend := newFakeBackend()
	backend.projects = []models.Project{projP, other}
	d := loaded(t, backend, alice)

	require.NoError(t, d.OpenNotificationDialog("P"))
	require.NoError(t, d.CreateNotification(context.Background(), models.NotificationForm{ProjectID: "P", Title: "Standup", Message: "10am"}))

	view := d.Snapshot()
	assert.False(t, view.NotificationDialog.Open)
	require.Len(t, view.Projects[0].Notifications, 1)
	assert.Equal(t, "alice", view.Projects[0].Notifications[0].Sender)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 2, backend.notificationsCalls["P"])
	assert.Equal(t, 1, backend.notificationsCalls["P2"])
}

func TestAdminNotificationDoesNotRefresh(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, admin)

	require.NoError(t, d.CreateNotification(context.Background(), models.NotificationForm{ProjectID: "P", Title: "Audit", Message: "Friday"}))

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.createdNotes, 1)
	assert.Equal(t, "root", backend.createdNotes[0].Sender)
	assert.Zero(t, backend.notificationsCalls["P"])
}

func TestLeaderCannotNotifyForeignProject(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, alice)

	err := d.CreateNotification(context.Background(), models.NotificationForm{ProjectID: "Q", Title: "Hi", Message: "there"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Zero(t, backend.mutationCount())
}

func TestRejectedNotificationKeepsDialog(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	backend.createNotificationErr = apperrors.ErrRejected
	d := loaded(t, backend, alice)

	form := models.NotificationForm{ProjectID: "P", Title: "Standup", Message: "10am"}
	err := d.CreateNotification(context.Background(), form)
	assert.Equal(t, apperrors.KindAuthorization, apperrors.Classify(err))

	dialog := d.Snapshot().NotificationDialog
	assert.True(t, dialog.Open)
	assert.Equal(t, form, dialog.Form)
}

func TestMemberCannotNotify(t *testing.T) {
	backend := newFakeBackend()
	backend.projects = []models.Project{projP}
	d := loaded(t, backend, carol)

	assert.ErrorIs(t, d.OpenNotificationDialog(""), apperrors.ErrForbidden)
	err := d.CreateNotification(context.Background(), models.NotificationForm{ProjectID: "P", Title: "x", Message: "y"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Zero(t, backend.mutationCount())
}
