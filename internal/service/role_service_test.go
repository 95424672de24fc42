package service

import (
	"context"
	"testing"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
)

func newRoleFixture() (*RoleService, *mockMembershipRepo, *mockUserRepo) {
	memberships := &mockMembershipRepo{}
	users := &mockUserRepo{users: map[string]domain.User{
		"manager-1": {ID: "manager-1", OrganizationID: "org-1", Email: "m1@example.com", OrganizationRole: domain.RoleMember, Status: domain.UserStatusActive},
		"admin-1":   {ID: "admin-1", OrganizationID: "org-1", Email: "a1@example.com", OrganizationRole: domain.RoleAdmin, Status: domain.UserStatusActive},
		"target-1":  {ID: "target-1", OrganizationID: "org-1", Email: "t1@example.com", Status: domain.UserStatusActive},
		"outsider":  {ID: "outsider", OrganizationID: "org-2", Email: "o@example.com", Status: domain.UserStatusActive},
	}}
	svc := NewRoleService(RoleDependencies{
		MembershipRepo: memberships,
		UserRepo:       users,
	})
	return svc, memberships, users
}

func deptManagerContext() auth.SessionContext {
	dept := "dept-1"
	return auth.SessionContext{
		PrincipalID:      "manager-1",
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
		DepartmentID:     &dept,
		DepartmentRole:   domain.RoleManager,
	}
}

// managerEdge is the actor's own store-backed standing in dept-1. Tests that
// expect a grant to be considered must seed it; the token claim alone is
// never enough.
func managerEdge() domain.Membership {
	return domain.Membership{
		ID: "actor-edge", PrincipalID: "manager-1", OrganizationID: "org-1",
		ScopeType: domain.ScopeDepartment, ScopeID: "dept-1", Role: domain.RoleManager,
	}
}

func TestAssignRoleWithinOwnLevel(t *testing.T) {
	svc, memberships, _ := newRoleFixture()
	memberships.edges = []domain.Membership{managerEdge()}

	edge, err := svc.AssignRole(context.Background(), deptManagerContext(), AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "member",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-1",
	})
	if err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if edge.Role != domain.RoleMember {
		t.Errorf("assigned role = %q, want MEMBER", edge.Role)
	}
	if len(memberships.edges) != 2 {
		t.Fatalf("edges = %d, want 2 (actor edge plus the new grant)", len(memberships.edges))
	}
}

func TestAssignRoleStaleTokenStanding(t *testing.T) {
	svc, _, _ := newRoleFixture()

	// The token claims Manager in dept-1, but the store holds no edge for
	// the actor. The mutation must be refused on the store's answer.
	_, err := svc.AssignRole(context.Background(), deptManagerContext(), AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "member",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-1",
	})
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestAssignRoleSuspendedActor(t *testing.T) {
	svc, memberships, users := newRoleFixture()
	memberships.edges = []domain.Membership{managerEdge()}
	suspended := users.users["manager-1"]
	suspended.Status = domain.UserStatusSuspended
	users.users["manager-1"] = suspended

	_, err := svc.AssignRole(context.Background(), deptManagerContext(), AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "member",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-1",
	})
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestAssignRoleAboveOwnLevel(t *testing.T) {
	svc, memberships, _ := newRoleFixture()
	memberships.edges = []domain.Membership{managerEdge()}

	_, err := svc.AssignRole(context.Background(), deptManagerContext(), AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "admin",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-1",
	})
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestAssignRoleUnknownName(t *testing.T) {
	svc, _, _ := newRoleFixture()

	_, err := svc.AssignRole(context.Background(), deptManagerContext(), AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "supervisor",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-1",
	})
	wantErrorCode(t, err, "VALIDATION_FAILED")
}

func TestAssignRoleOutsideOwnScope(t *testing.T) {
	svc, memberships, _ := newRoleFixture()
	memberships.edges = []domain.Membership{managerEdge()}

	// Manager of dept-1 has no standing in dept-2.
	_, err := svc.AssignRole(context.Background(), deptManagerContext(), AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "member",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-2",
	})
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestAssignRoleCrossOrganizationTarget(t *testing.T) {
	svc, _, _ := newRoleFixture()

	admin := auth.SessionContext{
		PrincipalID:      "admin-1",
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleAdmin,
	}
	_, err := svc.AssignRole(context.Background(), admin, AssignRoleInput{
		TargetUserID: "outsider",
		RoleName:     "member",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-1",
	})
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestAssignRolePeerModificationDenied(t *testing.T) {
	svc, memberships, _ := newRoleFixture()
	// Target already holds Manager; a fellow Manager must not touch it.
	memberships.edges = []domain.Membership{
		managerEdge(),
		{ID: "e1", PrincipalID: "target-1", OrganizationID: "org-1", ScopeType: domain.ScopeDepartment, ScopeID: "dept-1", Role: domain.RoleManager},
	}

	_, err := svc.AssignRole(context.Background(), deptManagerContext(), AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "member",
		ScopeType:    domain.ScopeDepartment,
		ScopeID:      "dept-1",
	})
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestAssignRoleOrgAdminAnywhere(t *testing.T) {
	svc, memberships, _ := newRoleFixture()
	memberships.edges = []domain.Membership{
		{ID: "e1", PrincipalID: "target-1", OrganizationID: "org-1", ScopeType: domain.ScopeProject, ScopeID: "proj-1", Role: domain.RoleManager},
	}

	admin := auth.SessionContext{
		PrincipalID:      "admin-1",
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleAdmin,
	}
	edge, err := svc.AssignRole(context.Background(), admin, AssignRoleInput{
		TargetUserID: "target-1",
		RoleName:     "viewer",
		ScopeType:    domain.ScopeProject,
		ScopeID:      "proj-1",
	})
	if err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if edge.Role != domain.RoleViewer {
		t.Errorf("assigned role = %q, want VIEWER", edge.Role)
	}
}

func TestRevokeRoleStrictlyBelow(t *testing.T) {
	svc, memberships, _ := newRoleFixture()
	memberships.edges = []domain.Membership{
		managerEdge(),
		{ID: "e1", PrincipalID: "target-1", OrganizationID: "org-1", ScopeType: domain.ScopeDepartment, ScopeID: "dept-1", Role: domain.RoleMember},
	}

	if err := svc.RevokeRole(context.Background(), deptManagerContext(), "target-1", domain.ScopeDepartment, "dept-1"); err != nil {
		t.Fatalf("RevokeRole: %v", err)
	}
	if len(memberships.edges) != 1 {
		t.Errorf("edges = %d, want 1 (only the actor's own edge left)", len(memberships.edges))
	}
}

func TestRevokeRolePeerDenied(t *testing.T) {
	svc, memberships, _ := newRoleFixture()
	memberships.edges = []domain.Membership{
		managerEdge(),
		{ID: "e1", PrincipalID: "target-1", OrganizationID: "org-1", ScopeType: domain.ScopeDepartment, ScopeID: "dept-1", Role: domain.RoleManager},
	}

	err := svc.RevokeRole(context.Background(), deptManagerContext(), "target-1", domain.ScopeDepartment, "dept-1")
	wantErrorCode(t, err, "FORBIDDEN")
}
