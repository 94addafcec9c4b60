package models

// Status is the lifecycle label shared by projects and tasks.
type Status string

const (
	StatusNotStarted  Status = "Not Started"
	StatusInProgress  Status = "In Progress"
	StatusUnderReview Status = "Under Review"
	StatusCompleted   Status = "Completed"
)

// UnknownStatusLabel is shown for absent or unrecognized statuses.
const UnknownStatusLabel = "Unknown"

// Severity is the display emphasis of a status chip.
type Severity string

const (
	SeverityNeutral Severity = "default"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

// Statuses returns the recognized statuses in workflow order.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusInProgress, StatusUnderReview, StatusCompleted}
}

// Known reports whether s belongs to the status vocabulary.
func (s Status) Known() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusUnderReview, StatusCompleted:
		return true
	}
	return false
}

// Severity maps a status to its chip color. Anything outside the vocabulary is neutral.
func (s Status) Severity() Severity {
	switch s {
	case StatusInProgress:
		return SeverityWarning
	case StatusUnderReview:
		return SeverityInfo
	case StatusCompleted:
		return SeveritySuccess
	default:
		return SeverityNeutral
	}
}

// Label returns the display text for s.
func (s Status) Label() string {
	if !s.Known() {
		return UnknownStatusLabel
	}
	return string(s)
}
