package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "training-service"
	EventVersion = "1.0"
)

type EventType string

const (
	EnrollmentAssigned     EventType = "training.enrollment.assigned"
	EnrollmentStarted      EventType = "training.enrollment.started"
	EnrollmentCompleted    EventType = "training.enrollment.completed"
	EnrollmentExpiring     EventType = "training.enrollment.expiring"
	EnrollmentExpired      EventType = "training.enrollment.expired"
	AcknowledgmentRecorded EventType = "training.acknowledgment.recorded"
	DocumentExpiring       EventType = "training.document.expiring"
	DocumentExpired        EventType = "training.document.expired"
	DocumentRenewed        EventType = "training.document.renewed"
)

// Event is the envelope published for every domain event.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, at time.Time, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: at.UTC(),
		Data:      data,
	}
}

type EnrollmentEventData struct {
	EnrollmentID uint       `json:"enrollment_id"`
	OrgID        string     `json:"org_id"`
	UserID       string     `json:"user_id"`
	ModuleID     string     `json:"module_id"`
	ModuleTitle  string     `json:"module_title,omitempty"`
	Cycle        int        `json:"cycle"`
	AssignedBy   string     `json:"assigned_by,omitempty"`
	DueAt        *time.Time `json:"due_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	// DaysRemaining is set on expiry reminders
	DaysRemaining *int `json:"days_remaining,omitempty"`
	Threshold     *int `json:"threshold,omitempty"`
}

type AcknowledgmentEventData struct {
	AcknowledgmentID uint      `json:"acknowledgment_id"`
	EnrollmentID     uint      `json:"enrollment_id"`
	UserID           string    `json:"user_id"`
	ModuleID         string    `json:"module_id"`
	AcknowledgedAt   time.Time `json:"acknowledged_at"`
}

type DocumentEventData struct {
	DocumentID    uint      `json:"document_id"`
	OrgID         string    `json:"org_id"`
	DocumentType  string    `json:"document_type"`
	Title         string    `json:"title"`
	ExpiresAt     time.Time `json:"expires_at"`
	DaysRemaining int       `json:"days_remaining"`
	Threshold     int       `json:"threshold"`
	RenewedFromID *uint     `json:"renewed_from_id,omitempty"`
}
