package auth

import (
	"testing"

	"github.com/spec-kit/workdesk/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestAuthorizeCrossOrganization(t *testing.T) {
	sc := SessionContext{
		PrincipalID:      "user-1",
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleAdmin,
	}
	action := Action{OrganizationID: "org-2", MinRole: domain.RoleViewer}
	if Authorize(sc, action) {
		t.Error("admin of org-1 must not act in org-2")
	}

	action.DepartmentID = strPtr("dept-9")
	if Authorize(sc, action) {
		t.Error("admin bypass must not cross the organization boundary")
	}
}

func TestAuthorizeUnknownMinRole(t *testing.T) {
	sc := SessionContext{
		PrincipalID:      "user-1",
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleAdmin,
	}
	for _, min := range []domain.Role{"", "SUPERVISOR"} {
		if Authorize(sc, Action{OrganizationID: "org-1", MinRole: min}) {
			t.Errorf("unrecognized MinRole %q must deny, not allow", min)
		}
	}
}

func TestAuthorizeProjectScopeDominance(t *testing.T) {
	// Org admin, department manager, but only a viewer on the project:
	// project-scoped actions must use the project role exclusively.
	sc := SessionContext{
		PrincipalID:      "user-1",
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleAdmin,
		DepartmentID:     strPtr("dept-1"),
		DepartmentRole:   domain.RoleManager,
		ProjectID:        strPtr("proj-1"),
		ProjectRole:      domain.RoleViewer,
	}

	action := Action{OrganizationID: "org-1", ProjectID: strPtr("proj-1"), MinRole: domain.RoleManager}
	if Authorize(sc, action) {
		t.Error("project viewer must not pass a Manager check, whatever the outer roles")
	}

	action.MinRole = domain.RoleViewer
	if !Authorize(sc, action) {
		t.Error("project viewer should pass a Viewer check in its own project")
	}
}

func TestAuthorizeProjectScopeContainment(t *testing.T) {
	sc := SessionContext{
		PrincipalID:      "user-1",
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleAdmin,
		ProjectID:        strPtr("proj-1"),
		ProjectRole:      domain.RoleAdmin,
	}

	// Holding proj-1 grants nothing in proj-2, even for an org admin.
	action := Action{OrganizationID: "org-1", ProjectID: strPtr("proj-2"), MinRole: domain.RoleViewer}
	if Authorize(sc, action) {
		t.Error("a different project scope must deny")
	}

	// No project selected at all.
	sc.ProjectID = nil
	sc.ProjectRole = ""
	if Authorize(sc, Action{OrganizationID: "org-1", ProjectID: strPtr("proj-1"), MinRole: domain.RoleViewer}) {
		t.Error("a project action without a selected project must deny")
	}
}

func TestAuthorizeDepartmentScope(t *testing.T) {
	sc := SessionContext{
		PrincipalID:      "user-1",
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
		DepartmentID:     strPtr("dept-1"),
		DepartmentRole:   domain.RoleManager,
	}

	if !Authorize(sc, Action{OrganizationID: "org-1", DepartmentID: strPtr("dept-1"), MinRole: domain.RoleManager}) {
		t.Error("department manager should pass a Manager check in its department")
	}
	if Authorize(sc, Action{OrganizationID: "org-1", DepartmentID: strPtr("dept-2"), MinRole: domain.RoleViewer}) {
		t.Error("a department the context does not hold must deny")
	}
	if Authorize(sc, Action{OrganizationID: "org-1", DepartmentID: strPtr("dept-1"), MinRole: domain.RoleAdmin}) {
		t.Error("manager must not pass an Admin check")
	}

	// Organization Admin passes any department inside its own organization.
	admin := SessionContext{
		PrincipalID:      "admin-1",
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleAdmin,
	}
	if !Authorize(admin, Action{OrganizationID: "org-1", DepartmentID: strPtr("dept-2"), MinRole: domain.RoleAdmin}) {
		t.Error("org admin should pass for any department in its organization")
	}
}

func TestAuthorizeOrganizationScope(t *testing.T) {
	sc := SessionContext{
		PrincipalID:      "user-1",
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
	}
	if !Authorize(sc, Action{OrganizationID: "org-1", MinRole: domain.RoleMember}) {
		t.Error("member should pass a Member check at organization scope")
	}
	if Authorize(sc, Action{OrganizationID: "org-1", MinRole: domain.RoleManager}) {
		t.Error("member must not pass a Manager check")
	}
}

func TestCanAssignRoleMonotonic(t *testing.T) {
	cases := []struct {
		self, target domain.Role
		want         bool
	}{
		{domain.RoleAdmin, domain.RoleAdmin, true},
		{domain.RoleAdmin, domain.RoleManager, true},
		{domain.RoleManager, domain.RoleManager, true},
		{domain.RoleManager, domain.RoleMember, true},
		{domain.RoleManager, domain.RoleAdmin, false},
		{domain.RoleMember, domain.RoleManager, false},
		{domain.RoleMember, domain.RoleMember, true},
		{domain.RoleViewer, domain.RoleMember, true}, // shared bottom tier
		{domain.RoleAdmin, "", false},                // unknown grant carries no capability
		{"", domain.RoleMember, false},
	}
	for _, tc := range cases {
		if got := CanAssignRole(tc.self, tc.target); got != tc.want {
			t.Errorf("CanAssignRole(%q, %q) = %v, want %v", tc.self, tc.target, got, tc.want)
		}
	}
}

func TestCanModifyRoleStrict(t *testing.T) {
	cases := []struct {
		self, target domain.Role
		want         bool
	}{
		{domain.RoleAdmin, domain.RoleManager, true},
		{domain.RoleAdmin, domain.RoleMember, true},
		{domain.RoleAdmin, domain.RoleAdmin, false}, // peers are off limits
		{domain.RoleManager, domain.RoleManager, false},
		{domain.RoleManager, domain.RoleMember, true},
		{domain.RoleMember, domain.RoleViewer, false}, // same tier
		{domain.RoleMember, domain.RoleAdmin, false},
		{"", domain.RoleViewer, false},
		{domain.RoleAdmin, "", true}, // a roleless target may be cleaned up
	}
	for _, tc := range cases {
		if got := CanModifyRole(tc.self, tc.target); got != tc.want {
			t.Errorf("CanModifyRole(%q, %q) = %v, want %v", tc.self, tc.target, got, tc.want)
		}
	}
}

func TestEffectiveDepartmentRole(t *testing.T) {
	sc := SessionContext{
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
		DepartmentID:     strPtr("dept-1"),
		DepartmentRole:   domain.RoleManager,
	}
	if got := EffectiveDepartmentRole(sc, "dept-1"); got != domain.RoleManager {
		t.Errorf("EffectiveDepartmentRole(dept-1) = %q, want MANAGER", got)
	}
	if got := EffectiveDepartmentRole(sc, "dept-2"); got != "" {
		t.Errorf("EffectiveDepartmentRole(dept-2) = %q, want empty", got)
	}

	sc.OrganizationRole = domain.RoleAdmin
	if got := EffectiveDepartmentRole(sc, "dept-2"); got != domain.RoleAdmin {
		t.Errorf("admin bypass: got %q, want ADMIN", got)
	}
}
