package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// ScopeService re-derives session contexts when a principal selects a
// department or project. Every switch re-proves the membership edge against
// the store; the lists embedded in the old token are display hints only.
type ScopeService struct {
	memberships repository.MembershipRepository
	departments repository.DepartmentRepository
	projects    repository.ProjectRepository
	codec       *auth.TokenCodec
}

// ScopeDependencies bundles repositories for the scope service.
type ScopeDependencies struct {
	MembershipRepo repository.MembershipRepository
	DepartmentRepo repository.DepartmentRepository
	ProjectRepo    repository.ProjectRepository
	Codec          *auth.TokenCodec
}

// DepartmentGrant is the result of a department switch.
type DepartmentGrant struct {
	Token      string
	ExpiresAt  time.Time
	Department *domain.Department
	Role       domain.Role
}

// ProjectGrant is the result of a project switch.
type ProjectGrant struct {
	Token     string
	ExpiresAt time.Time
	Project   *domain.Project
	Role      domain.Role
}

// DefaultProjectGrant is the result of deterministic default selection.
type DefaultProjectGrant struct {
	ProjectGrant
	AllProjects []ProjectMembershipInfo
}

// ProjectMembershipInfo pairs a project with the principal's role in it.
type ProjectMembershipInfo struct {
	Project domain.Project
	Role    domain.Role
}

// NewScopeService builds the service.
func NewScopeService(deps ScopeDependencies) *ScopeService {
	return &ScopeService{
		memberships: deps.MembershipRepo,
		departments: deps.DepartmentRepo,
		projects:    deps.ProjectRepo,
		codec:       deps.Codec,
	}
}

// SwitchDepartment narrows the session to a department the principal is a
// member of. The department role comes from the just-fetched edge, never from
// the client or the old token. Selecting a department clears any previously
// selected project; a project grant must be re-proven under the new
// navigation state.
func (s *ScopeService) SwitchDepartment(ctx context.Context, current auth.SessionContext, departmentID string) (*DepartmentGrant, error) {
	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Nonexistent and forbidden scopes are indistinguishable.
			return nil, apperrors.NewForbidden("access denied")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if dept.OrganizationID != current.OrganizationID || !dept.IsActive {
		return nil, apperrors.NewForbidden("access denied")
	}

	edge, err := s.memberships.GetEdge(ctx, current.PrincipalID, domain.ScopeDepartment, departmentID, current.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("access denied")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	next, err := s.rebuild(ctx, current)
	if err != nil {
		return nil, err
	}
	next.DepartmentID = &dept.ID
	next.DepartmentRole = edge.Role
	next.ProjectID = nil
	next.ProjectRole = ""

	token, expiresAt, err := s.codec.Encode(next)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &DepartmentGrant{Token: token, ExpiresAt: expiresAt, Department: dept, Role: edge.Role}, nil
}

// SwitchProject narrows the session to a project the principal is a member
// of. The project role becomes the dominant role for project-scoped checks;
// organization role and department context carry forward unchanged.
func (s *ScopeService) SwitchProject(ctx context.Context, current auth.SessionContext, projectID string) (*ProjectGrant, error) {
	project, edge, err := s.proveProject(ctx, current, projectID)
	if err != nil {
		return nil, err
	}

	next, err := s.rebuild(ctx, current)
	if err != nil {
		return nil, err
	}
	next.DepartmentID = current.DepartmentID
	next.DepartmentRole = current.DepartmentRole
	next.ProjectID = &project.ID
	next.ProjectRole = edge.Role

	token, expiresAt, err := s.codec.Encode(next)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ProjectGrant{Token: token, ExpiresAt: expiresAt, Project: project, Role: edge.Role}, nil
}

// DefaultProject selects the principal's earliest-created project membership.
// The ordering (created_at ascending, then id) makes the choice stable:
// repeated calls with unchanged memberships always pick the same project.
func (s *ScopeService) DefaultProject(ctx context.Context, current auth.SessionContext) (*DefaultProjectGrant, error) {
	edges, err := s.memberships.ListProjectEdges(ctx, current.PrincipalID, current.OrganizationID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if len(edges) == 0 {
		return nil, apperrors.NewNotFound("project membership", nil)
	}

	projects, err := s.projects.ListByOrganization(ctx, current.OrganizationID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	byID := make(map[string]domain.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	var all []ProjectMembershipInfo
	for _, edge := range edges {
		if p, ok := byID[edge.ScopeID]; ok {
			all = append(all, ProjectMembershipInfo{Project: p, Role: edge.Role})
		}
	}
	if len(all) == 0 {
		return nil, apperrors.NewNotFound("project membership", nil)
	}

	grant, err := s.SwitchProject(ctx, current, all[0].Project.ID)
	if err != nil {
		return nil, err
	}
	return &DefaultProjectGrant{ProjectGrant: *grant, AllProjects: all}, nil
}

func (s *ScopeService) proveProject(ctx context.Context, current auth.SessionContext, projectID string) (*domain.Project, *domain.Membership, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewForbidden("access denied")
		}
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	if project.OrganizationID != current.OrganizationID || !project.IsActive {
		return nil, nil, apperrors.NewForbidden("access denied")
	}

	edge, err := s.memberships.GetEdge(ctx, current.PrincipalID, domain.ScopeProject, projectID, current.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewForbidden("access denied")
		}
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	return project, edge, nil
}

// rebuild produces a fresh context for the same principal and organization,
// with the membership maps re-read from the store so a revoked edge drops out
// of the new token.
func (s *ScopeService) rebuild(ctx context.Context, current auth.SessionContext) (auth.SessionContext, error) {
	next := auth.SessionContext{
		PrincipalID:      current.PrincipalID,
		PrincipalType:    current.PrincipalType,
		OrganizationID:   current.OrganizationID,
		OrganizationRole: current.OrganizationRole,
	}

	all, err := s.memberships.ListByPrincipal(ctx, current.PrincipalID, current.OrganizationID)
	if err != nil {
		return auth.SessionContext{}, apperrors.NewStoreUnavailable(err)
	}
	for _, edge := range all {
		switch edge.ScopeType {
		case domain.ScopeDepartment:
			if next.DepartmentRoles == nil {
				next.DepartmentRoles = make(map[string]domain.Role)
			}
			next.DepartmentRoles[edge.ScopeID] = edge.Role
		case domain.ScopeProject:
			if next.ProjectRoles == nil {
				next.ProjectRoles = make(map[string]domain.Role)
			}
			next.ProjectRoles[edge.ScopeID] = edge.Role
		}
	}
	return next, nil
}
