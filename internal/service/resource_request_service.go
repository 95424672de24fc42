package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// ResourceRequestService manages department resource requests and their
// approval workflow.
type ResourceRequestService struct {
	requests    repository.ResourceRequestRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
}

// ResourceRequestDependencies bundles repositories for the service.
type ResourceRequestDependencies struct {
	RequestRepo    repository.ResourceRequestRepository
	DepartmentRepo repository.DepartmentRepository
	Dispatcher     events.Dispatcher
}

// ResourceRequestInput describes a new request.
type ResourceRequestInput struct {
	DepartmentID string
	ItemName     string
	Quantity     int
	Reason       string
}

// NewResourceRequestService builds the service.
func NewResourceRequestService(deps ResourceRequestDependencies) *ResourceRequestService {
	return &ResourceRequestService{
		requests:    deps.RequestRepo,
		departments: deps.DepartmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateRequest files a pending request. Requires Member in the department.
func (s *ResourceRequestService) CreateRequest(ctx context.Context, sc auth.SessionContext, input ResourceRequestInput) (*domain.ResourceRequest, error) {
	allowed := auth.Authorize(sc, auth.Action{
		OrganizationID: sc.OrganizationID,
		DepartmentID:   &input.DepartmentID,
		MinRole:        domain.RoleMember,
	})
	if !allowed {
		return nil, apperrors.NewForbidden("access denied")
	}

	item := strings.TrimSpace(input.ItemName)
	if item == "" {
		return nil, apperrors.NewValidationError("item name is required", nil)
	}
	if input.Quantity <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", nil)
	}

	dept, err := s.departments.GetByID(ctx, input.DepartmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("access denied")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if dept.OrganizationID != sc.OrganizationID || !dept.IsActive {
		return nil, apperrors.NewForbidden("access denied")
	}

	req := &domain.ResourceRequest{
		OrganizationID: sc.OrganizationID,
		DepartmentID:   input.DepartmentID,
		RequesterID:    sc.PrincipalID,
		ItemName:       item,
		Quantity:       input.Quantity,
		Reason:         strings.TrimSpace(input.Reason),
		Status:         domain.ResourceRequestPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventResourceRequestCreated,
		OrganizationID: sc.OrganizationID,
		Actor:          events.Actor{Type: sc.PrincipalType, PrincipalID: sc.PrincipalID},
		Payload: events.ResourceRequestCreatedPayload{
			RequestID:    req.ID,
			DepartmentID: req.DepartmentID,
			ItemName:     req.ItemName,
			Quantity:     req.Quantity,
		},
	})
	return req, nil
}

// ListRequests returns a department's requests. Requires Member in the
// department; organization Admins see any department.
func (s *ResourceRequestService) ListRequests(ctx context.Context, sc auth.SessionContext, departmentID string, limit, offset int) ([]domain.ResourceRequest, error) {
	allowed := auth.Authorize(sc, auth.Action{
		OrganizationID: sc.OrganizationID,
		DepartmentID:   &departmentID,
		MinRole:        domain.RoleMember,
	})
	if !allowed {
		return nil, apperrors.NewForbidden("access denied")
	}

	requests, err := s.requests.ListByDepartment(ctx, departmentID, sc.OrganizationID, limit, offset)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return requests, nil
}

// DecideRequest approves or rejects a pending request. Requires Manager in the
// request's department. Decisions are final.
func (s *ResourceRequestService) DecideRequest(ctx context.Context, sc auth.SessionContext, requestID string, approve bool, note string) (*domain.ResourceRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("resource request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if req.OrganizationID != sc.OrganizationID {
		return nil, apperrors.NewNotFound("resource request", map[string]any{"request_id": requestID})
	}

	allowed := auth.Authorize(sc, auth.Action{
		OrganizationID: sc.OrganizationID,
		DepartmentID:   &req.DepartmentID,
		MinRole:        domain.RoleManager,
	})
	if !allowed {
		return nil, apperrors.NewForbidden("access denied")
	}
	if req.Status != domain.ResourceRequestPending {
		return nil, apperrors.NewConflict("request already decided", map[string]any{"status": req.Status})
	}

	now := time.Now()
	decider := sc.PrincipalID
	if approve {
		req.Status = domain.ResourceRequestApproved
	} else {
		req.Status = domain.ResourceRequestRejected
	}
	req.DeciderID = &decider
	req.DecisionNote = strings.TrimSpace(note)
	req.DecidedAt = &now

	if err := s.requests.Update(ctx, req); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventResourceRequestDecided,
		OrganizationID: sc.OrganizationID,
		Actor:          events.Actor{Type: sc.PrincipalType, PrincipalID: sc.PrincipalID},
		Recipients:     []string{req.RequesterID},
		Payload: events.ResourceRequestDecidedPayload{
			RequestID: req.ID,
			Status:    req.Status,
			Note:      req.DecisionNote,
		},
	})
	return req, nil
}
