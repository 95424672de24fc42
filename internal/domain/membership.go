package domain

import "time"

// ScopeType identifies which boundary a membership edge grants access to.
type ScopeType string

const (
	ScopeDepartment ScopeType = "DEPARTMENT"
	ScopeProject    ScopeType = "PROJECT"
)

// Membership is the ground-truth record of a principal's role within one
// scope. Authorization decisions re-prove these edges against the store;
// a role embedded in a token is never the source of truth for a switch.
type Membership struct {
	ID             string
	PrincipalID    string
	OrganizationID string
	ScopeType      ScopeType
	ScopeID        string
	Role           Role
	CreatedAt      time.Time
}
