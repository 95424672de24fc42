package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateDepartmentRequest payload. Nil fields stay unchanged.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// DepartmentResponse response.
type DepartmentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	DepartmentID *string `json:"department_id"`
}

// UpdateProjectRequest payload. Nil fields stay unchanged.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// ProjectResponse response.
type ProjectResponse struct {
	ID           string    `json:"id"`
	DepartmentID *string   `json:"department_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserResponse is a roster entry.
type UserResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	OrganizationRole domain.Role       `json:"organization_role"`
	Status           domain.UserStatus `json:"status"`
	CreatedAt        time.Time         `json:"created_at"`
}
