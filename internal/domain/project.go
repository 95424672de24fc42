package domain

import "time"

// Project is a unit of work within one organization, optionally owned by a
// department.
type Project struct {
	ID             string
	OrganizationID string
	DepartmentID   *string
	Name           string
	Description    string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
