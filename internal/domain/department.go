package domain

import "time"

// Department groups users within one organization.
type Department struct {
	ID             string
	OrganizationID string
	Name           string
	Description    string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
