package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// AssignRoleRequest payload. Role arrives as a free-form name and is
// normalized server side.
type AssignRoleRequest struct {
	TargetUserID string           `json:"target_user_id"`
	Role         string           `json:"role"`
	ScopeType    domain.ScopeType `json:"scope_type"`
	ScopeID      string           `json:"scope_id"`
}

// RevokeRoleRequest payload.
type RevokeRoleRequest struct {
	TargetUserID string           `json:"target_user_id"`
	ScopeType    domain.ScopeType `json:"scope_type"`
	ScopeID      string           `json:"scope_id"`
}

// MembershipResponse describes one membership edge.
type MembershipResponse struct {
	PrincipalID string           `json:"principal_id"`
	ScopeType   domain.ScopeType `json:"scope_type"`
	ScopeID     string           `json:"scope_id"`
	Role        domain.Role      `json:"role"`
	CreatedAt   time.Time        `json:"created_at"`
}
