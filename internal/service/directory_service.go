package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// DirectoryService manages the organization structure: departments, projects
// and the user roster. Structural changes require the organization Admin role.
type DirectoryService struct {
	departments repository.DepartmentRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	memberships repository.MembershipRepository
}

// DirectoryDependencies bundles repositories for the directory service.
type DirectoryDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	ProjectRepo    repository.ProjectRepository
	UserRepo       repository.UserRepository
	MembershipRepo repository.MembershipRepository
}

// NewDirectoryService builds the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		departments: deps.DepartmentRepo,
		projects:    deps.ProjectRepo,
		users:       deps.UserRepo,
		memberships: deps.MembershipRepo,
	}
}

// CreateDepartment adds a department to the caller's organization.
func (s *DirectoryService) CreateDepartment(ctx context.Context, sc auth.SessionContext, name, description string) (*domain.Department, error) {
	if sc.OrganizationRole != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("access denied")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("department name is required", nil)
	}

	dept := &domain.Department{
		OrganizationID: sc.OrganizationID,
		Name:           name,
		Description:    strings.TrimSpace(description),
		IsActive:       true,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return dept, nil
}

// UpdateDepartment renames or deactivates a department.
func (s *DirectoryService) UpdateDepartment(ctx context.Context, sc auth.SessionContext, departmentID string, name, description *string, active *bool) (*domain.Department, error) {
	if sc.OrganizationRole != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("access denied")
	}

	dept, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("department", map[string]any{"department_id": departmentID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if dept.OrganizationID != sc.OrganizationID {
		return nil, apperrors.NewNotFound("department", map[string]any{"department_id": departmentID})
	}

	if name != nil && strings.TrimSpace(*name) != "" {
		dept.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		dept.Description = strings.TrimSpace(*description)
	}
	if active != nil {
		dept.IsActive = *active
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return dept, nil
}

// ListDepartments returns the organization's active departments.
func (s *DirectoryService) ListDepartments(ctx context.Context, sc auth.SessionContext) ([]domain.Department, error) {
	departments, err := s.departments.ListByOrganization(ctx, sc.OrganizationID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return departments, nil
}

// CreateProject adds a project, optionally attached to a department.
func (s *DirectoryService) CreateProject(ctx context.Context, sc auth.SessionContext, name, description string, departmentID *string) (*domain.Project, error) {
	if sc.OrganizationRole != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("access denied")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("project name is required", nil)
	}

	if departmentID != nil {
		dept, err := s.departments.GetByID(ctx, *departmentID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("unknown department", nil)
			}
			return nil, apperrors.NewStoreUnavailable(err)
		}
		if dept.OrganizationID != sc.OrganizationID {
			return nil, apperrors.NewValidationError("unknown department", nil)
		}
	}

	project := &domain.Project{
		OrganizationID: sc.OrganizationID,
		DepartmentID:   departmentID,
		Name:           name,
		Description:    strings.TrimSpace(description),
		IsActive:       true,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return project, nil
}

// UpdateProject renames or deactivates a project.
func (s *DirectoryService) UpdateProject(ctx context.Context, sc auth.SessionContext, projectID string, name, description *string, active *bool) (*domain.Project, error) {
	if sc.OrganizationRole != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("access denied")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if project.OrganizationID != sc.OrganizationID {
		return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
	}

	if name != nil && strings.TrimSpace(*name) != "" {
		project.Name = strings.TrimSpace(*name)
	}
	if description != nil {
		project.Description = strings.TrimSpace(*description)
	}
	if active != nil {
		project.IsActive = *active
	}
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return project, nil
}

// ListProjects returns the organization's active projects.
func (s *DirectoryService) ListProjects(ctx context.Context, sc auth.SessionContext) ([]domain.Project, error) {
	projects, err := s.projects.ListByOrganization(ctx, sc.OrganizationID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return projects, nil
}

// ListUsers returns the organization roster. Requires Manager at organization
// level or Admin.
func (s *DirectoryService) ListUsers(ctx context.Context, sc auth.SessionContext, limit, offset int) ([]domain.User, error) {
	if domain.RoleLevel(sc.OrganizationRole) < domain.RoleLevel(domain.RoleManager) {
		return nil, apperrors.NewForbidden("access denied")
	}
	users, err := s.users.ListByOrganization(ctx, sc.OrganizationID, limit, offset)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return users, nil
}

// ListMemberships returns a user's membership edges. Users may inspect their
// own; Admins may inspect anyone in the organization.
func (s *DirectoryService) ListMemberships(ctx context.Context, sc auth.SessionContext, userID string) ([]domain.Membership, error) {
	if userID == "" {
		userID = sc.PrincipalID
	}
	if userID != sc.PrincipalID && sc.OrganizationRole != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("access denied")
	}
	edges, err := s.memberships.ListByPrincipal(ctx, userID, sc.OrganizationID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return edges, nil
}
