package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	DepartmentID string                `json:"department_id"`
	ProjectID    *string               `json:"project_id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Priority     domain.TicketPriority `json:"priority"`
	Tags         []string              `json:"tags"`
}

// UpdateTicketStatusRequest payload.
type UpdateTicketStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	ExternalKey  string                `json:"external_key"`
	DepartmentID string                `json:"department_id"`
	ProjectID    *string               `json:"project_id"`
	ReporterID   string                `json:"reporter_id"`
	AssigneeID   *string               `json:"assignee_id"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Tags         []string              `json:"tags"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string     `json:"description"`
	ClosedAt    *time.Time `json:"closed_at"`
}
