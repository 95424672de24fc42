package events

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventRoleAssigned           EventType = "role_assigned"
	EventResourceRequestCreated EventType = "resource_request_created"
	EventResourceRequestDecided EventType = "resource_request_decided"
	EventAttendanceCheckedIn    EventType = "attendance_checked_in"
	EventPasswordResetRequested EventType = "password_reset_requested"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type        domain.PrincipalType `json:"type"`
	PrincipalID string               `json:"principal_id"`
}

// Event represents a domain event emitted by services. Recipients drive
// notification fan-out; the worker persists one notification per recipient.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	OrganizationID string      `json:"organization_id"`
	Actor          Actor       `json:"actor"`
	Recipients     []string    `json:"recipients,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketID     string                `json:"ticket_id"`
	DepartmentID string                `json:"department_id"`
	ProjectID    *string               `json:"project_id,omitempty"`
	Priority     domain.TicketPriority `json:"priority"`
	Title        string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID  string              `json:"ticket_id"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID   string  `json:"ticket_id"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// RoleAssignedPayload payload.
type RoleAssignedPayload struct {
	TargetID  string           `json:"target_id"`
	ScopeType domain.ScopeType `json:"scope_type"`
	ScopeID   string           `json:"scope_id"`
	Role      domain.Role      `json:"role"`
}

// ResourceRequestCreatedPayload payload.
type ResourceRequestCreatedPayload struct {
	RequestID    string `json:"request_id"`
	DepartmentID string `json:"department_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
}

// ResourceRequestDecidedPayload payload.
type ResourceRequestDecidedPayload struct {
	RequestID string                       `json:"request_id"`
	Status    domain.ResourceRequestStatus `json:"status"`
	Note      string                       `json:"note,omitempty"`
}

// AttendanceCheckedInPayload payload.
type AttendanceCheckedInPayload struct {
	RecordID string    `json:"record_id"`
	UserID   string    `json:"user_id"`
	CheckIn  time.Time `json:"check_in"`
}

// PasswordResetRequestedPayload payload.
type PasswordResetRequestedPayload struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
