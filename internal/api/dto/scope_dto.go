package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// SwitchDepartmentRequest payload.
type SwitchDepartmentRequest struct {
	DepartmentID string `json:"department_id"`
}

// SwitchProjectRequest payload.
type SwitchProjectRequest struct {
	ProjectID string `json:"project_id"`
}

// DepartmentScopeResponse is returned by a department switch.
type DepartmentScopeResponse struct {
	Token      string        `json:"token"`
	ExpiresAt  time.Time     `json:"expires_at"`
	Department DepartmentRef `json:"department"`
}

// DepartmentRef names a department together with the granted role.
type DepartmentRef struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
}

// ProjectScopeResponse is returned by a project switch.
type ProjectScopeResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Project   ProjectRef  `json:"project"`
	Role      domain.Role `json:"role"`
}

// ProjectRef names a project.
type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultProjectResponse is returned by default project selection. Projects
// lists every project membership the principal holds, selection first.
type DefaultProjectResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	Project   ProjectRef          `json:"project"`
	Role      domain.Role         `json:"role"`
	Projects  []ProjectMembership `json:"projects"`
}

// ProjectMembership pairs a project with the caller's role in it.
type ProjectMembership struct {
	Project ProjectRef  `json:"project"`
	Role    domain.Role `json:"role"`
}
