package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// ResourceRequestsHandler manages resource request endpoints.
type ResourceRequestsHandler struct {
	service *service.ResourceRequestService
}

// NewResourceRequestsHandler constructs handler.
func NewResourceRequestsHandler(requestService *service.ResourceRequestService) *ResourceRequestsHandler {
	return &ResourceRequestsHandler{service: requestService}
}

// CreateRequest POST /resource-requests.
func (h *ResourceRequestsHandler) CreateRequest(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateResourceRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID == "" {
		return apperrors.NewValidationError("department_id required", nil)
	}

	request, err := h.service.CreateRequest(c.UserContext(), *sc, service.ResourceRequestInput{
		DepartmentID: req.DepartmentID,
		ItemName:     req.ItemName,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": resourceRequestResponse(request)})
}

// ListRequests GET /resource-requests.
func (h *ResourceRequestsHandler) ListRequests(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	departmentID := c.Query("department_id")
	if departmentID == "" && sc.DepartmentID != nil {
		departmentID = *sc.DepartmentID
	}
	if departmentID == "" {
		return apperrors.NewValidationError("department_id required", nil)
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)

	requests, err := h.service.ListRequests(c.UserContext(), *sc, departmentID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.ResourceRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, resourceRequestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DecideRequest POST /resource-requests/:id/decide.
func (h *ResourceRequestsHandler) DecideRequest(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.DecideResourceRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, err := h.service.DecideRequest(c.UserContext(), *sc, c.Params("id"), req.Approve, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": resourceRequestResponse(request)})
}

func resourceRequestResponse(req *domain.ResourceRequest) dto.ResourceRequestResponse {
	return dto.ResourceRequestResponse{
		ID:           req.ID,
		DepartmentID: req.DepartmentID,
		RequesterID:  req.RequesterID,
		ItemName:     req.ItemName,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		Status:       req.Status,
		DeciderID:    req.DeciderID,
		DecisionNote: req.DecisionNote,
		DecidedAt:    req.DecidedAt,
		CreatedAt:    req.CreatedAt,
	}
}
