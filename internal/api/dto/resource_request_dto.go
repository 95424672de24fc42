package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// CreateResourceRequestRequest payload.
type CreateResourceRequestRequest struct {
	DepartmentID string `json:"department_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	Reason       string `json:"reason"`
}

// DecideResourceRequestRequest payload.
type DecideResourceRequestRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// ResourceRequestResponse response.
type ResourceRequestResponse struct {
	ID           string                       `json:"id"`
	DepartmentID string                       `json:"department_id"`
	RequesterID  string                       `json:"requester_id"`
	ItemName     string                       `json:"item_name"`
	Quantity     int                          `json:"quantity"`
	Reason       string                       `json:"reason,omitempty"`
	Status       domain.ResourceRequestStatus `json:"status"`
	DeciderID    *string                      `json:"decider_id,omitempty"`
	DecisionNote string                       `json:"decision_note,omitempty"`
	DecidedAt    *time.Time                   `json:"decided_at,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
}
