package models

// Notification is an append-only announcement scoped to one project.
type Notification struct {
	ID        string    `json:"id,omitempty"`
	ProjectID string    `json:"projectId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Sender    string    `json:"sender"`
	CreatedAt Timestamp `json:"createdAt"`
}
