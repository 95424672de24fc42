package domain

// PrincipalType differentiates user tokens from organization tokens.
type PrincipalType string

const (
	PrincipalTypeUser         PrincipalType = "USER"
	PrincipalTypeOrganization PrincipalType = "ORGANIZATION"
)
