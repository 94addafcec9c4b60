package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"team-project/dashboard/apperrors"
	"team-project/dashboard/logging"
	"team-project/dashboard/models"
)

// UsernameHeader carries the acting identity on every mutation.
const UsernameHeader = "X-User-Username"

const maxResponseBody = 4 << 20

// BackendRepository talks to the team/project REST backend.
type BackendRepository struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewBackendRepository(baseURL string, client *http.Client, breaker *gobreaker.CircuitBreaker) *BackendRepository {
	return &BackendRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		breaker: breaker,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statusRequest struct {
	Status models.Status `json:"status"`
}

type createNotificationRequest struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	ProjectID string `json:"projectId"`
	Sender    string `json:"sender"`
}

type createTaskRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	AssignedMembers []string `json:"assignedMembers"`
	ProjectID       string   `json:"projectId"`
}

// Login checks credentials. The backend answers null for unknown users and wrong passwords.
func (r *BackendRepository) Login(ctx context.Context, username, password string) (models.Identity, error) {
	var user *models.Identity
	err := r.do(ctx, http.MethodPost, "/api/auth/login", "", loginRequest{Username: username, Password: password}, &user)
	if errors.Is(err, apperrors.ErrEmptyResponse) || (err == nil && user == nil) {
		return models.Identity{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, err
	}
	return *user, nil
}

func (r *BackendRepository) ListUsers(ctx context.Context) ([]models.Identity, error) {
	var users []models.Identity
	if err := r.do(ctx, http.MethodGet, "/api/auth/users", "", nil, &users); err != nil {
		return nil, err
	}
	return orEmpty(users), nil
}

func (r *BackendRepository) ListAllProjects(ctx context.Context) ([]models.Project, error) {
	return r.listProjects(ctx, "/api/projects/admin")
}

func (r *BackendRepository) ListProjectsByTeamLeader(ctx context.Context, username string) ([]models.Project, error) {
	return r.listProjects(ctx, "/api/projects/team-leader/"+url.PathEscape(username))
}

func (r *BackendRepository) ListProjectsByTeamMember(ctx context.Context, username string) ([]models.Project, error) {
	return r.listProjects(ctx, "/api/projects/team-member/"+url.PathEscape(username))
}

func (r *BackendRepository) listProjects(ctx context.Context, path string) ([]models.Project, error) {
	var projects []models.Project
	if err := r.do(ctx, http.MethodGet, path, "", nil, &projects); err != nil {
		return nil, err
	}
	return orEmpty(projects), nil
}

func (r *BackendRepository) CreateProject(ctx context.Context, actor string, project models.Project) (models.Project, error) {
	project.ID = ""
	var created *models.Project
	if err := r.do(ctx, http.MethodPost, "/api/projects", actor, project, &created); err != nil {
		return models.Project{}, err
	}
	if created == nil {
		return models.Project{}, apperrors.ErrEmptyResponse
	}
	return *created, nil
}

func (r *BackendRepository) UpdateProjectStatus(ctx context.Context, actor, projectID string, status models.Status) (models.Project, error) {
	var updated *models.Project
	path := "/api/projects/" + url.PathEscape(projectID) + "/status"
	if err := r.do(ctx, http.MethodPut, path, actor, statusRequest{Status: status}, &updated); err != nil {
		return models.Project{}, err
	}
	if updated == nil {
		return models.Project{}, apperrors.ErrEmptyResponse
	}
	return *updated, nil
}

// DeleteProject removes the project; the backend cascades its notifications and tasks.
func (r *BackendRepository) DeleteProject(ctx context.Context, actor, projectID string) error {
	return r.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(projectID), actor, nil, nil)
}

func (r *BackendRepository) ListNotifications(ctx context.Context, projectID string) ([]models.Notification, error) {
	var notifications []models.Notification
	path := "/api/notifications/project/" + url.PathEscape(projectID)
	if err := r.do(ctx, http.MethodGet, path, "", nil, &notifications); err != nil {
		return nil, err
	}
	return orEmpty(notifications), nil
}

// CreateNotification posts an announcement. A null answer means the backend
// refused the sender.
func (r *BackendRepository) CreateNotification(ctx context.Context, actor string, n models.Notification) (models.Notification, error) {
	body := createNotificationRequest{
		Title:     n.Title,
		Message:   n.Message,
		ProjectID: n.ProjectID,
		Sender:    n.Sender,
	}
	var created *models.Notification
	err := r.do(ctx, http.MethodPost, "/api/notifications", actor, body, &created)
	if errors.Is(err, apperrors.ErrEmptyResponse) || (err == nil && created == nil) {
		return models.Notification{}, fmt.Errorf("create notification: %w", apperrors.ErrRejected)
	}
	if err != nil {
		return models.Notification{}, err
	}
	return *created, nil
}

func (r *BackendRepository) ListTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.do(ctx, http.MethodGet, "/api/tasks/project/"+url.PathEscape(projectID), "", nil, &tasks); err != nil {
		return nil, err
	}
	return orEmpty(tasks), nil
}

func (r *BackendRepository) CreateTask(ctx context.Context, actor string, task models.Task) (models.Task, error) {
	body := createTaskRequest{
		Name:            task.Name,
		Description:     task.Description,
		AssignedMembers: task.AssignedMembers,
		ProjectID:       task.ProjectID,
	}
	var created *models.Task
	if err := r.do(ctx, http.MethodPost, "/api/tasks", actor, body, &created); err != nil {
		return models.Task{}, err
	}
	if created == nil {
		return models.Task{}, apperrors.ErrEmptyResponse
	}
	return *created, nil
}

func (r *BackendRepository) UpdateTaskStatus(ctx context.Context, actor, taskID string, status models.Status) (models.Task, error) {
	var updated *models.Task
	path := "/api/tasks/" + url.PathEscape(taskID) + "/status"
	if err := r.do(ctx, http.MethodPut, path, actor, statusRequest{Status: status}, &updated); err != nil {
		return models.Task{}, err
	}
	if updated == nil {
		return models.Task{}, apperrors.ErrEmptyResponse
	}
	return *updated, nil
}

// do runs one request through the circuit breaker. out must be a pointer; an
// empty body with a non-nil out yields ErrEmptyResponse.
func (r *BackendRepository) do(ctx context.Context, method, path, actor string, body, out interface{}) error {
	_, err := r.breaker.Execute(func() (interface{}, error) {
		return nil, r.roundTrip(ctx, method, path, actor, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Logger.Warnf("Event ID: BACKEND_CIRCUIT_OPEN, Description: %s %s skipped: %v", method, path, err)
		return fmt.Errorf("%s %s: %w", method, path, apperrors.ErrBackendUnavailable)
	}
	return err
}

func (r *BackendRepository) roundTrip(ctx context.Context, method, path, actor string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("error creating request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != "" {
		req.Header.Set(UsernameHeader, actor)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return &apperrors.TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &apperrors.TransportError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &apperrors.APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return apperrors.ErrEmptyResponse
	}
	if err := json.Unmarshal(data, out); err != nil {
		logging.Logger.Errorf("Event ID: BACKEND_DECODE_FAILED, Description: %s %s: %v", method, path, err)
		return fmt.Errorf("failed to decode %s %s response: %w: %w", method, path, apperrors.ErrMalformedResponse, err)
	}
	return nil
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
