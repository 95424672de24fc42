package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// AttendanceHandler manages attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendanceService *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: attendanceService}
}

// CheckIn POST /attendance/check-in.
func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AttendanceNoteRequest
	_ = c.BodyParser(&req)

	record, err := h.service.CheckIn(c.UserContext(), *sc, req.Note)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": attendanceResponse(record)})
}

// CheckOut POST /attendance/check-out.
func (h *AttendanceHandler) CheckOut(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AttendanceNoteRequest
	_ = c.BodyParser(&req)

	record, err := h.service.CheckOut(c.UserContext(), *sc, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": attendanceResponse(record)})
}

// ListRecords GET /attendance.
func (h *AttendanceHandler) ListRecords(c *fiber.Ctx) error {
	sc, ok := auth.SessionFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 31)

	records, err := h.service.ListRecords(c.UserContext(), *sc, c.Query("user_id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	items := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		items = append(items, attendanceResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func attendanceResponse(record *domain.AttendanceRecord) dto.AttendanceRecordResponse {
	return dto.AttendanceRecordResponse{
		ID:       record.ID,
		UserID:   record.UserID,
		CheckIn:  record.CheckIn,
		CheckOut: record.CheckOut,
		Note:     record.Note,
	}
}
