package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// DirectoryHandler manages organization structure endpoints.
type DirectoryHandler struct {
	service *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directoryService *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{service: directoryService}
}

// CreateDepartment POST /departments.
func (h *DirectoryHandler) CreateDepartment(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.CreateDepartment(c.UserContext(), *sc, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": departmentResponse(dept)})
}

// UpdateDepartment PATCH /departments/:id.
func (h *DirectoryHandler) UpdateDepartment(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.service.UpdateDepartment(c.UserContext(), *sc, c.Params("id"), req.Name, req.Description, req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": departmentResponse(dept)})
}

// ListDepartments GET /departments.
func (h *DirectoryHandler) ListDepartments(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	departments, err := h.service.ListDepartments(c.UserContext(), *sc)
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentResponse, 0, len(departments))
	for i := range departments {
		items = append(items, departmentResponse(&departments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateProject POST /projects.
func (h *DirectoryHandler) CreateProject(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.CreateProject(c.UserContext(), *sc, req.Name, req.Description, req.DepartmentID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": projectResponse(project)})
}

// UpdateProject PATCH /projects/:id.
func (h *DirectoryHandler) UpdateProject(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	project, err := h.service.UpdateProject(c.UserContext(), *sc, c.Params("id"), req.Name, req.Description, req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projectResponse(project)})
}

// ListProjects GET /projects.
func (h *DirectoryHandler) ListProjects(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	projects, err := h.service.ListProjects(c.UserContext(), *sc)
	if err != nil {
		return err
	}
	items := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		items = append(items, projectResponse(&projects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListUsers GET /users.
func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	users, err := h.service.ListUsers(c.UserContext(), *sc, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.UserResponse{
			ID:               user.ID,
			Name:             user.Name,
			Email:            user.Email,
			OrganizationRole: user.OrganizationRole,
			Status:           user.Status,
			CreatedAt:        user.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListMemberships GET /users/:id/memberships.
func (h *DirectoryHandler) ListMemberships(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	edges, err := h.service.ListMemberships(c.UserContext(), *sc, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.MembershipResponse, 0, len(edges))
	for _, edge := range edges {
		items = append(items, dto.MembershipResponse{
			PrincipalID: edge.PrincipalID,
			ScopeType:   edge.ScopeType,
			ScopeID:     edge.ScopeID,
			Role:        edge.Role,
			CreatedAt:   edge.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func departmentResponse(dept *domain.Department) dto.DepartmentResponse {
	return dto.DepartmentResponse{
		ID:          dept.ID,
		Name:        dept.Name,
		Description: dept.Description,
		Active:      dept.IsActive,
		CreatedAt:   dept.CreatedAt,
	}
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:           project.ID,
		DepartmentID: project.DepartmentID,
		Name:         project.Name,
		Description:  project.Description,
		Active:       project.IsActive,
		CreatedAt:    project.CreatedAt,
	}
}
