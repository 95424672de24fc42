package auth

import "github.com/spec-kit/workdesk/internal/domain"

// Action describes one permission check: the scope it runs against and the
// minimum role it demands. DepartmentID and ProjectID narrow the scope; when
// both are nil the action is organization-scoped.
type Action struct {
	OrganizationID string
	DepartmentID   *string
	ProjectID      *string
	MinRole        domain.Role
}

// Authorize decides allow/deny for an action under a resolved session
// context. The decision is binary; callers translate a deny into a generic
// "access denied" with no detail about what exists.
//
// Rules, in order:
//   - the context's organization must own the action's scope; there is no
//     cross-organization capability of any kind
//   - a project-scoped action uses the project role exclusively, and only
//     when the context currently holds that exact project scope
//   - a department-scoped action uses the department role when the context
//     holds that department scope; an organization Admin passes for any
//     department inside its own organization
//   - an organization-scoped action uses the organization role
func Authorize(sc SessionContext, action Action) bool {
	minLevel := domain.RoleLevel(action.MinRole)
	if minLevel == 0 {
		// An unrecognized requirement must never evaluate as "no restriction".
		return false
	}
	if sc.OrganizationID == "" || sc.OrganizationID != action.OrganizationID {
		return false
	}

	if action.ProjectID != nil {
		if sc.ProjectID == nil || *sc.ProjectID != *action.ProjectID {
			return false
		}
		return domain.RoleLevel(sc.ProjectRole) >= minLevel
	}

	if action.DepartmentID != nil {
		if sc.OrganizationRole == domain.RoleAdmin {
			return true
		}
		if sc.DepartmentID == nil || *sc.DepartmentID != *action.DepartmentID {
			return false
		}
		return domain.RoleLevel(sc.DepartmentRole) >= minLevel
	}

	return domain.RoleLevel(sc.OrganizationRole) >= minLevel
}

// CanAssignRole reports whether a principal holding selfRole may grant
// targetRole within the same scope. Assignment requires at least the granted
// level, and the granted level must itself carry capability.
func CanAssignRole(selfRole, targetRole domain.Role) bool {
	targetLevel := domain.RoleLevel(targetRole)
	if targetLevel == 0 {
		return false
	}
	return domain.RoleLevel(selfRole) >= targetLevel
}

// CanModifyRole reports whether a principal holding selfRole may modify a
// target currently holding targetRole. Modification is strictly hierarchical:
// peers and superiors are off limits, Admin-vs-Admin included, so a
// compromised account cannot move laterally.
func CanModifyRole(selfRole, targetRole domain.Role) bool {
	selfLevel := domain.RoleLevel(selfRole)
	if selfLevel == 0 {
		return false
	}
	return selfLevel > domain.RoleLevel(targetRole)
}

// EffectiveDepartmentRole resolves the role the context holds for a given
// department, honoring the organization-Admin bypass.
func EffectiveDepartmentRole(sc SessionContext, departmentID string) domain.Role {
	if sc.OrganizationRole == domain.RoleAdmin {
		return domain.RoleAdmin
	}
	if sc.DepartmentID != nil && *sc.DepartmentID == departmentID {
		return sc.DepartmentRole
	}
	return ""
}
