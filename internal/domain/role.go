package domain

import "strings"

// Role enumerates the closed set of scoped roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
	RoleViewer  Role = "VIEWER"
)

// Capability levels per role. Viewer shares the bottom tier with Member.
const (
	levelNone    = 0
	levelMember  = 1
	levelManager = 2
	levelAdmin   = 3
)

// RoleLevel maps a role to its capability level. Anything outside the closed
// set maps to zero capability, never to an error.
func RoleLevel(r Role) int {
	switch r {
	case RoleAdmin:
		return levelAdmin
	case RoleManager:
		return levelManager
	case RoleMember, RoleViewer:
		return levelMember
	default:
		return levelNone
	}
}

// NormalizeRole maps free-form role names onto the closed enum. Historic data
// carries case variants and aliases ("admin", "ADMIN", "super admin"); all
// comparisons must go through this single mapping. Unrecognized names return
// the empty Role, which carries no capability.
func NormalizeRole(name string) Role {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ADMIN", "ADMINISTRATOR", "SUPER ADMIN", "SUPERADMIN", "OWNER":
		return RoleAdmin
	case "MANAGER", "TEAM LEAD", "TEAM_LEAD", "LEAD":
		return RoleManager
	case "MEMBER", "USER", "EMPLOYEE", "STAFF", "AGENT":
		return RoleMember
	case "VIEWER", "GUEST", "READONLY", "READ_ONLY":
		return RoleViewer
	default:
		return ""
	}
}
