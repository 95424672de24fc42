package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/domain"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

type mockMembershipRepo struct {
	edges []domain.Membership
	err   error
}

func (m *mockMembershipRepo) GetEdge(_ context.Context, principalID string, scopeType domain.ScopeType, scopeID, organizationID string) (*domain.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.edges {
		e := m.edges[i]
		if e.PrincipalID == principalID && e.ScopeType == scopeType && e.ScopeID == scopeID && e.OrganizationID == organizationID {
			return &e, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockMembershipRepo) ListByPrincipal(_ context.Context, principalID, organizationID string) ([]domain.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.Membership
	for _, e := range m.edges {
		if e.PrincipalID == principalID && e.OrganizationID == organizationID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) ListProjectEdges(_ context.Context, principalID, organizationID string) ([]domain.Membership, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []domain.Membership
	for _, e := range m.edges {
		if e.PrincipalID == principalID && e.OrganizationID == organizationID && e.ScopeType == domain.ScopeProject {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) Upsert(_ context.Context, edge *domain.Membership) error {
	if m.err != nil {
		return m.err
	}
	for i := range m.edges {
		e := &m.edges[i]
		if e.PrincipalID == edge.PrincipalID && e.ScopeType == edge.ScopeType && e.ScopeID == edge.ScopeID {
			e.Role = edge.Role
			edge.ID = e.ID
			edge.CreatedAt = e.CreatedAt
			return nil
		}
	}
	edge.ID = "edge-new"
	edge.CreatedAt = time.Now()
	m.edges = append(m.edges, *edge)
	return nil
}

func (m *mockMembershipRepo) Delete(_ context.Context, principalID string, scopeType domain.ScopeType, scopeID, organizationID string) error {
	if m.err != nil {
		return m.err
	}
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.PrincipalID == principalID && e.ScopeType == scopeType && e.ScopeID == scopeID && e.OrganizationID == organizationID {
			continue
		}
		kept = append(kept, e)
	}
	m.edges = kept
	return nil
}

type mockDepartmentRepo struct {
	departments map[string]domain.Department
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	m.departments[dept.ID] = *dept
	return nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	if _, ok := m.departments[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.departments[dept.ID] = *dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	dept, ok := m.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &dept, nil
}

func (m *mockDepartmentRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.Department, error) {
	var result []domain.Department
	for _, dept := range m.departments {
		if dept.OrganizationID == organizationID && dept.IsActive {
			result = append(result, dept)
		}
	}
	return result, nil
}

type mockProjectRepo struct {
	projects map[string]domain.Project
	order    []string
}

func (m *mockProjectRepo) Create(_ context.Context, project *domain.Project) error {
	m.projects[project.ID] = *project
	m.order = append(m.order, project.ID)
	return nil
}

func (m *mockProjectRepo) Update(_ context.Context, project *domain.Project) error {
	if _, ok := m.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.projects[project.ID] = *project
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := m.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &project, nil
}

func (m *mockProjectRepo) ListByOrganization(_ context.Context, organizationID string) ([]domain.Project, error) {
	var result []domain.Project
	for _, id := range m.order {
		project := m.projects[id]
		if project.OrganizationID == organizationID && project.IsActive {
			result = append(result, project)
		}
	}
	return result, nil
}

type mockUserRepo struct {
	users map[string]domain.User
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.users[user.ID] = *user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockUserRepo) ListByOrganization(_ context.Context, organizationID string, _, _ int) ([]domain.User, error) {
	var result []domain.User
	for _, user := range m.users {
		if user.OrganizationID == organizationID {
			result = append(result, user)
		}
	}
	return result, nil
}

func wantErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("error code = %s, want %s (message %q)", domainErr.Code, code, domainErr.Message)
	}
}
