package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// ScopeHandler manages session scope switching.
type ScopeHandler struct {
	service *service.ScopeService
}

// NewScopeHandler constructs handler.
func NewScopeHandler(scopeService *service.ScopeService) *ScopeHandler {
	return &ScopeHandler{service: scopeService}
}

// SwitchDepartment POST /auth/switch-department.
func (h *ScopeHandler) SwitchDepartment(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SwitchDepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID == "" {
		return apperrors.NewValidationError("department_id required", nil)
	}

	grant, err := h.service.SwitchDepartment(c.UserContext(), *sc, req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentScopeResponse{
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
		Department: dto.DepartmentRef{
			ID:   grant.Department.ID,
			Name: grant.Department.Name,
			Role: grant.Role,
		},
	}})
}

// SwitchProject POST /auth/switch-project.
func (h *ScopeHandler) SwitchProject(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SwitchProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ProjectID == "" {
		return apperrors.NewValidationError("project_id required", nil)
	}

	grant, err := h.service.SwitchProject(c.UserContext(), *sc, req.ProjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProjectScopeResponse{
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
		Project:   dto.ProjectRef{ID: grant.Project.ID, Name: grant.Project.Name},
		Role:      grant.Role,
	}})
}

// DefaultProject GET /auth/default-project.
func (h *ScopeHandler) DefaultProject(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	grant, err := h.service.DefaultProject(c.UserContext(), *sc)
	if err != nil {
		return err
	}
	memberships := make([]dto.ProjectMembership, 0, len(grant.AllProjects))
	for _, info := range grant.AllProjects {
		memberships = append(memberships, dto.ProjectMembership{
			Project: dto.ProjectRef{ID: info.Project.ID, Name: info.Project.Name},
			Role:    info.Role,
		})
	}
	return c.JSON(fiber.Map{"data": dto.DefaultProjectResponse{
		Token:     grant.Token,
		ExpiresAt: grant.ExpiresAt,
		Project:   dto.ProjectRef{ID: grant.Project.ID, Name: grant.Project.Name},
		Role:      grant.Role,
		Projects:  memberships,
	}})
}
