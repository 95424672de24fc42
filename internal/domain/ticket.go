package domain

import "time"

// TicketStatus enumerates workflow states.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// TicketPriority enumerates urgency labels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is a work item scoped to an organization and department, optionally
// attached to a project.
type Ticket struct {
	ID             string
	ExternalKey    string
	OrganizationID string
	DepartmentID   string
	ProjectID      *string
	ReporterID     string
	AssigneeID     *string
	Title          string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
}
