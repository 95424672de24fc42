package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// RolesHandler manages membership role endpoints.
type RolesHandler struct {
	service *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roleService *service.RoleService) *RolesHandler {
	return &RolesHandler{service: roleService}
}

// AssignRole POST /roles/assign.
func (h *RolesHandler) AssignRole(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TargetUserID == "" || req.Role == "" || req.ScopeID == "" {
		return apperrors.NewValidationError("target_user_id, role, scope_id required", nil)
	}

	edge, err := h.service.AssignRole(c.UserContext(), *sc, service.AssignRoleInput{
		TargetUserID: req.TargetUserID,
		RoleName:     req.Role,
		ScopeType:    req.ScopeType,
		ScopeID:      req.ScopeID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.MembershipResponse{
		PrincipalID: edge.PrincipalID,
		ScopeType:   edge.ScopeType,
		ScopeID:     edge.ScopeID,
		Role:        edge.Role,
		CreatedAt:   edge.CreatedAt,
	}})
}

// RevokeRole POST /roles/revoke.
func (h *RolesHandler) RevokeRole(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RevokeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TargetUserID == "" || req.ScopeID == "" {
		return apperrors.NewValidationError("target_user_id, scope_id required", nil)
	}

	if err := h.service.RevokeRole(c.UserContext(), *sc, req.TargetUserID, req.ScopeType, req.ScopeID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"revoked": true}})
}
