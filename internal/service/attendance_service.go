package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// AttendanceService records user check-ins and check-outs. Attendance is a
// user-principal feature; organization principals do not clock in.
type AttendanceService struct {
	records    repository.AttendanceRepository
	dispatcher events.Dispatcher
}

// NewAttendanceService builds the service.
func NewAttendanceService(records repository.AttendanceRepository, dispatcher events.Dispatcher) *AttendanceService {
	return &AttendanceService{records: records, dispatcher: dispatcher}
}

// CheckIn opens an attendance record for the calling user. A user with an
// open record cannot check in again until it is closed.
func (s *AttendanceService) CheckIn(ctx context.Context, sc auth.SessionContext, note string) (*domain.AttendanceRecord, error) {
	if sc.PrincipalType != domain.PrincipalTypeUser {
		return nil, apperrors.NewForbidden("access denied")
	}

	if _, err := s.records.GetOpenByUser(ctx, sc.PrincipalID, sc.OrganizationID); err == nil {
		return nil, apperrors.NewConflict("already checked in", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	record := &domain.AttendanceRecord{
		OrganizationID: sc.OrganizationID,
		UserID:         sc.PrincipalID,
		CheckIn:        time.Now(),
		Note:           note,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventAttendanceCheckedIn,
		OrganizationID: sc.OrganizationID,
		Actor:          events.Actor{Type: sc.PrincipalType, PrincipalID: sc.PrincipalID},
		Payload: events.AttendanceCheckedInPayload{
			RecordID: record.ID,
			UserID:   sc.PrincipalID,
			CheckIn:  record.CheckIn,
		},
	})
	return record, nil
}

// CheckOut closes the caller's open attendance record.
func (s *AttendanceService) CheckOut(ctx context.Context, sc auth.SessionContext, note string) (*domain.AttendanceRecord, error) {
	if sc.PrincipalType != domain.PrincipalTypeUser {
		return nil, apperrors.NewForbidden("access denied")
	}

	record, err := s.records.GetOpenByUser(ctx, sc.PrincipalID, sc.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("no open attendance record", nil)
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}

	now := time.Now()
	record.CheckOut = &now
	if note != "" {
		record.Note = note
	}
	if err := s.records.SetCheckOut(ctx, record); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return record, nil
}

// ListRecords returns attendance history. Users see their own records; an
// organization Admin may inspect any user inside the organization.
func (s *AttendanceService) ListRecords(ctx context.Context, sc auth.SessionContext, userID string, limit, offset int) ([]domain.AttendanceRecord, error) {
	if userID == "" {
		userID = sc.PrincipalID
	}
	if userID != sc.PrincipalID && sc.OrganizationRole != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("access denied")
	}

	records, err := s.records.ListByUser(ctx, userID, sc.OrganizationID, limit, offset)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return records, nil
}
