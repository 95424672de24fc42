package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// RegisterOrganizationRequest payload.
type RegisterOrganizationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Domain   string `json:"domain"`
	Password string `json:"password"`
}

// RegisterUserRequest payload.
type RegisterUserRequest struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
}

// LoginRequest payload, shared by user and organization login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries a freshly minted token and its decoded context.
type SessionResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Context   SessionSnapshot `json:"context"`
}

// SessionSnapshot is the client-visible view of a session context.
type SessionSnapshot struct {
	PrincipalID      string                 `json:"principal_id"`
	PrincipalType    domain.PrincipalType   `json:"principal_type"`
	OrganizationID   string                 `json:"organization_id"`
	OrganizationRole domain.Role            `json:"organization_role"`
	DepartmentID     *string                `json:"department_id,omitempty"`
	DepartmentRole   domain.Role            `json:"department_role,omitempty"`
	ProjectID        *string                `json:"project_id,omitempty"`
	ProjectRole      domain.Role            `json:"project_role,omitempty"`
	DepartmentRoles  map[string]domain.Role `json:"department_roles,omitempty"`
	ProjectRoles     map[string]domain.Role `json:"project_roles,omitempty"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
