package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// AuthHandler manages registration, login and password endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// RegisterOrganization POST /auth/organizations/register.
func (h *AuthHandler) RegisterOrganization(c *fiber.Ctx) error {
	var req dto.RegisterOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	org, result, err := h.service.RegisterOrganization(c.UserContext(), req.Name, req.Email, req.Domain, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"organization": fiber.Map{"id": org.ID, "name": org.Name},
		"session":      sessionResponse(result),
	}})
}

// LoginOrganization POST /auth/organizations/login.
func (h *AuthHandler) LoginOrganization(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	_, result, err := h.service.LoginOrganization(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(result)})
}

// RegisterUser POST /auth/users/register.
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OrganizationID == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperrors.NewValidationError("organization_id, email, password required", nil)
	}

	user, result, err := h.service.RegisterUser(c.UserContext(), req.OrganizationID, req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"user":    fiber.Map{"id": user.ID, "name": user.Name, "email": user.Email},
		"session": sessionResponse(result),
	}})
}

// LoginUser POST /auth/users/login.
func (h *AuthHandler) LoginUser(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	_, result, err := h.service.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(result)})
}

// ChangePassword POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current_password, new_password required", nil)
	}
	if err := h.service.ChangePassword(c.UserContext(), *sc, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"changed": true}})
}

// RequestPasswordReset POST /auth/password/reset/request.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.RequestPasswordReset(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"requested": true}})
}

// ConfirmPasswordReset POST /auth/password/reset/confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("token, new_password required", nil)
	}
	if err := h.service.ConfirmPasswordReset(c.UserContext(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}

func sessionResponse(result *service.LoginResult) dto.SessionResponse {
	return dto.SessionResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Context:   sessionSnapshot(result.Context),
	}
}

func sessionSnapshot(sc auth.SessionContext) dto.SessionSnapshot {
	return dto.SessionSnapshot{
		PrincipalID:      sc.PrincipalID,
		PrincipalType:    sc.PrincipalType,
		OrganizationID:   sc.OrganizationID,
		OrganizationRole: sc.OrganizationRole,
		DepartmentID:     sc.DepartmentID,
		DepartmentRole:   sc.DepartmentRole,
		ProjectID:        sc.ProjectID,
		ProjectRole:      sc.ProjectRole,
		DepartmentRoles:  sc.DepartmentRoles,
		ProjectRoles:     sc.ProjectRoles,
	}
}
