package model

import "time"

// Severity classifies a notification for icon and color selection.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Notification is one activity item surfaced in the bell panel: a
// human-readable description of a change detected between two polls.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Severity controls how the entry is rendered.
	Severity Severity `json:"severity"`

	// Message is the already-formatted notification text.
	Message string `json:"message"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
