package domain

import "time"

// ResourceRequestStatus enumerates approval states.
type ResourceRequestStatus string

const (
	ResourceRequestPending  ResourceRequestStatus = "PENDING"
	ResourceRequestApproved ResourceRequestStatus = "APPROVED"
	ResourceRequestRejected ResourceRequestStatus = "REJECTED"
)

// ResourceRequest is a department-scoped request for equipment or budget,
// decided by a department manager or an organization admin.
type ResourceRequest struct {
	ID             string
	OrganizationID string
	DepartmentID   string
	RequesterID    string
	ItemName       string
	Quantity       int
	Reason         string
	Status         ResourceRequestStatus
	DeciderID      *string
	DecisionNote   string
	DecidedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
