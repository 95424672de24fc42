package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
)

func newTestCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec("scope-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func newScopeFixture(t *testing.T) (*ScopeService, *mockMembershipRepo, *mockDepartmentRepo, *mockProjectRepo, *auth.TokenCodec) {
	t.Helper()
	memberships := &mockMembershipRepo{}
	departments := &mockDepartmentRepo{departments: map[string]domain.Department{
		"dept-1": {ID: "dept-1", OrganizationID: "org-1", Name: "Engineering", IsActive: true},
		"dept-2": {ID: "dept-2", OrganizationID: "org-2", Name: "Elsewhere", IsActive: true},
	}}
	projects := &mockProjectRepo{projects: map[string]domain.Project{}, order: nil}
	codec := newTestCodec(t)
	svc := NewScopeService(ScopeDependencies{
		MembershipRepo: memberships,
		DepartmentRepo: departments,
		ProjectRepo:    projects,
		Codec:          codec,
	})
	return svc, memberships, departments, projects, codec
}

func userContext() auth.SessionContext {
	return auth.SessionContext{
		PrincipalID:      "user-1",
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
	}
}

func TestSwitchDepartmentRequiresStoreEdge(t *testing.T) {
	svc, _, _, _, _ := newScopeFixture(t)

	// The old token claims a department role, but the store has no edge.
	// The claim in the token must not win.
	current := userContext()
	current.DepartmentRoles = map[string]domain.Role{"dept-1": domain.RoleManager}

	_, err := svc.SwitchDepartment(context.Background(), current, "dept-1")
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestSwitchDepartmentGrantsAndClearsProject(t *testing.T) {
	svc, memberships, _, _, codec := newScopeFixture(t)
	memberships.edges = []domain.Membership{
		{ID: "e1", PrincipalID: "user-1", OrganizationID: "org-1", ScopeType: domain.ScopeDepartment, ScopeID: "dept-1", Role: domain.RoleManager},
	}

	proj := "proj-9"
	current := userContext()
	current.ProjectID = &proj
	current.ProjectRole = domain.RoleAdmin

	grant, err := svc.SwitchDepartment(context.Background(), current, "dept-1")
	if err != nil {
		t.Fatalf("SwitchDepartment: %v", err)
	}
	if grant.Role != domain.RoleManager {
		t.Errorf("granted role = %q, want MANAGER (from the store edge)", grant.Role)
	}
	if grant.Department.ID != "dept-1" {
		t.Errorf("department = %q, want dept-1", grant.Department.ID)
	}

	decoded, err := codec.Decode(grant.Token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.DepartmentID == nil || *decoded.DepartmentID != "dept-1" {
		t.Error("new token must carry the selected department")
	}
	if decoded.DepartmentRole != domain.RoleManager {
		t.Errorf("token department role = %q, want MANAGER", decoded.DepartmentRole)
	}
	if decoded.ProjectID != nil || decoded.ProjectRole != "" {
		t.Error("a department switch must clear the selected project")
	}
}

func TestSwitchDepartmentCrossOrganization(t *testing.T) {
	svc, memberships, _, _, _ := newScopeFixture(t)
	// Even with a (bogus) edge present, a department owned by another
	// organization must deny.
	memberships.edges = []domain.Membership{
		{ID: "e1", PrincipalID: "user-1", OrganizationID: "org-1", ScopeType: domain.ScopeDepartment, ScopeID: "dept-2", Role: domain.RoleAdmin},
	}

	_, err := svc.SwitchDepartment(context.Background(), userContext(), "dept-2")
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestSwitchDepartmentNonexistentIndistinguishable(t *testing.T) {
	svc, _, _, _, _ := newScopeFixture(t)
	_, err := svc.SwitchDepartment(context.Background(), userContext(), "no-such-dept")
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestSwitchDepartmentStoreFailureIsNotDeny(t *testing.T) {
	svc, memberships, _, _, _ := newScopeFixture(t)
	memberships.err = errors.New("connection refused")

	_, err := svc.SwitchDepartment(context.Background(), userContext(), "dept-1")
	wantErrorCode(t, err, "STORE_UNAVAILABLE")
}

func TestSwitchDepartmentTimedOutStoreCall(t *testing.T) {
	svc, memberships, _, _, _ := newScopeFixture(t)
	// The request deadline cancelling a store query is an availability
	// failure, never a denial.
	memberships.err = context.DeadlineExceeded

	_, err := svc.SwitchDepartment(context.Background(), userContext(), "dept-1")
	wantErrorCode(t, err, "STORE_UNAVAILABLE")
}

func TestSwitchProjectCarriesDepartmentForward(t *testing.T) {
	svc, memberships, _, projects, codec := newScopeFixture(t)
	projects.projects["proj-1"] = domain.Project{ID: "proj-1", OrganizationID: "org-1", Name: "Apollo", IsActive: true}
	projects.order = []string{"proj-1"}
	memberships.edges = []domain.Membership{
		{ID: "e1", PrincipalID: "user-1", OrganizationID: "org-1", ScopeType: domain.ScopeProject, ScopeID: "proj-1", Role: domain.RoleMember},
	}

	dept := "dept-1"
	current := userContext()
	current.DepartmentID = &dept
	current.DepartmentRole = domain.RoleManager

	grant, err := svc.SwitchProject(context.Background(), current, "proj-1")
	if err != nil {
		t.Fatalf("SwitchProject: %v", err)
	}
	if grant.Role != domain.RoleMember {
		t.Errorf("granted role = %q, want MEMBER", grant.Role)
	}

	decoded, err := codec.Decode(grant.Token)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.ProjectID == nil || *decoded.ProjectID != "proj-1" {
		t.Error("new token must carry the selected project")
	}
	if decoded.DepartmentID == nil || *decoded.DepartmentID != "dept-1" {
		t.Error("department context must carry forward through a project switch")
	}
	if decoded.DepartmentRole != domain.RoleManager {
		t.Errorf("department role = %q, want MANAGER", decoded.DepartmentRole)
	}
}

func TestSwitchProjectWithoutEdge(t *testing.T) {
	svc, _, _, projects, _ := newScopeFixture(t)
	projects.projects["proj-1"] = domain.Project{ID: "proj-1", OrganizationID: "org-1", Name: "Apollo", IsActive: true}
	projects.order = []string{"proj-1"}

	current := userContext()
	current.ProjectRoles = map[string]domain.Role{"proj-1": domain.RoleAdmin}

	_, err := svc.SwitchProject(context.Background(), current, "proj-1")
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestDefaultProjectDeterministic(t *testing.T) {
	svc, memberships, _, projects, _ := newScopeFixture(t)
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	projects.projects["proj-a"] = domain.Project{ID: "proj-a", OrganizationID: "org-1", Name: "Apollo", IsActive: true}
	projects.projects["proj-b"] = domain.Project{ID: "proj-b", OrganizationID: "org-1", Name: "Borealis", IsActive: true}
	projects.order = []string{"proj-a", "proj-b"}
	// The repository contract orders edges by creation time ascending.
	memberships.edges = []domain.Membership{
		{ID: "e1", PrincipalID: "user-1", OrganizationID: "org-1", ScopeType: domain.ScopeProject, ScopeID: "proj-a", Role: domain.RoleMember, CreatedAt: t1},
		{ID: "e2", PrincipalID: "user-1", OrganizationID: "org-1", ScopeType: domain.ScopeProject, ScopeID: "proj-b", Role: domain.RoleManager, CreatedAt: t2},
	}

	for i := 0; i < 3; i++ {
		grant, err := svc.DefaultProject(context.Background(), userContext())
		if err != nil {
			t.Fatalf("DefaultProject: %v", err)
		}
		if grant.Project.ID != "proj-a" {
			t.Fatalf("default project = %q, want proj-a (earliest membership)", grant.Project.ID)
		}
		if len(grant.AllProjects) != 2 {
			t.Fatalf("AllProjects = %d entries, want 2", len(grant.AllProjects))
		}
	}
}

func TestDefaultProjectNoMemberships(t *testing.T) {
	svc, _, _, _, _ := newScopeFixture(t)
	_, err := svc.DefaultProject(context.Background(), userContext())
	wantErrorCode(t, err, "NOT_FOUND")
}
