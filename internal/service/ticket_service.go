package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows. Every operation authorizes
// against the caller's session context before touching a record.
type TicketService struct {
	tickets     repository.TicketRepository
	departments repository.DepartmentRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	DepartmentRepo repository.DepartmentRepository
	ProjectRepo    repository.ProjectRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	DepartmentID string
	ProjectID    *string
	Title        string
	Description  string
	Priority     domain.TicketPriority
	Tags         []string
}

// TicketListFilter describes listing filters within the caller's scope.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		departments: deps.DepartmentRepo,
		projects:    deps.ProjectRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket creates a ticket in the caller's department scope. Attaching a
// project requires the project scope to be selected in the session.
func (s *TicketService) CreateTicket(ctx context.Context, sc auth.SessionContext, input TicketCreateInput) (*domain.Ticket, error) {
	allowed := auth.Authorize(sc, auth.Action{
		OrganizationID: sc.OrganizationID,
		DepartmentID:   &input.DepartmentID,
		MinRole:        domain.RoleMember,
	})
	if !allowed {
		return nil, apperrors.NewForbidden("access denied")
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

	if input.ProjectID != nil {
		projectAllowed := auth.Authorize(sc, auth.Action{
			OrganizationID: sc.OrganizationID,
			ProjectID:      input.ProjectID,
			MinRole:        domain.RoleMember,
		})
		if !projectAllowed {
			return nil, apperrors.NewForbidden("access denied")
		}
		project, err := s.projects.GetByID(ctx, *input.ProjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewForbidden("access denied")
			}
			return nil, apperrors.NewStoreUnavailable(err)
		}
		if project.OrganizationID != sc.OrganizationID || !project.IsActive {
			return nil, apperrors.NewForbidden("access denied")
		}
	}

	ticket := &domain.Ticket{
		ExternalKey:    generateTicketKey(),
		OrganizationID: sc.OrganizationID,
		DepartmentID:   input.DepartmentID,
		ProjectID:      input.ProjectID,
		ReporterID:     sc.PrincipalID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusOpen,
		Priority:       input.Priority,
		Tags:           input.Tags,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventTicketCreated,
		OrganizationID: sc.OrganizationID,
		Actor:          events.Actor{Type: sc.PrincipalType, PrincipalID: sc.PrincipalID},
		Payload: events.TicketCreatedPayload{
			TicketID:     ticket.ID,
			DepartmentID: ticket.DepartmentID,
			ProjectID:    ticket.ProjectID,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// ListTickets returns tickets visible under the caller's current scope. A
// non-admin without a selected department sees only their own reports.
func (s *TicketService) ListTickets(ctx context.Context, sc auth.SessionContext, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		OrganizationID: sc.OrganizationID,
		Statuses:       filter.Statuses,
		Priorities:     filter.Priorities,
		SearchTerm:     filter.SearchTerm,
		CreatedFrom:    filter.CreatedFrom,
		CreatedTo:      filter.CreatedTo,
		Limit:          filter.Limit,
		Offset:         filter.Offset,
	}
	switch {
	case sc.OrganizationRole == domain.RoleAdmin:
		// org-wide visibility
	case sc.ProjectID != nil:
		repoFilter.ProjectID = sc.ProjectID
	case sc.DepartmentID != nil:
		repoFilter.DepartmentID = sc.DepartmentID
	default:
		reporter := sc.PrincipalID
		repoFilter.ReporterID = &reporter
	}

	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	return tickets, nil
}

// GetTicket fetches a ticket the caller may see.
func (s *TicketService) GetTicket(ctx context.Context, sc auth.SessionContext, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.fetchVisible(ctx, sc, ticketID)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateStatus moves a ticket through its workflow. Requires Member in the
// ticket's scope; closing someone else's ticket requires Manager.
func (s *TicketService) UpdateStatus(ctx context.Context, sc auth.SessionContext, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, err := s.fetchVisible(ctx, sc, ticketID)
	if err != nil {
		return nil, err
	}
	minRole := domain.RoleMember
	if ticket.ReporterID != sc.PrincipalID {
		minRole = domain.RoleManager
	}
	if !s.authorizeTicket(sc, ticket, minRole) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusClosed {
		now := time.Now()
		ticket.ClosedAt = &now
	} else if ticket.ClosedAt != nil {
		ticket.ClosedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventTicketStatusChanged,
		OrganizationID: sc.OrganizationID,
		Actor:          events.Actor{Type: sc.PrincipalType, PrincipalID: sc.PrincipalID},
		Recipients:     ticketRecipients(ticket, sc.PrincipalID),
		Payload: events.TicketStatusChangedPayload{
			TicketID:  ticket.ID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// AssignTicket sets the assignee. Requires Manager in the ticket's scope, and
// the assignee must belong to the same organization.
func (s *TicketService) AssignTicket(ctx context.Context, sc auth.SessionContext, ticketID, assigneeID string) (*domain.Ticket, error) {
	ticket, err := s.fetchVisible(ctx, sc, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.authorizeTicket(sc, ticket, domain.RoleManager) {
		return nil, apperrors.NewForbidden("access denied")
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("access denied")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if assignee.OrganizationID != sc.OrganizationID || assignee.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("access denied")
	}

	ticket.AssigneeID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventTicketAssigned,
		OrganizationID: sc.OrganizationID,
		Actor:          events.Actor{Type: sc.PrincipalType, PrincipalID: sc.PrincipalID},
		Recipients:     []string{assignee.ID},
		Payload: events.TicketAssignedPayload{
			TicketID:   ticket.ID,
			AssigneeID: ticket.AssigneeID,
		},
	})
	return ticket, nil
}

func (s *TicketService) fetchVisible(ctx context.Context, sc auth.SessionContext, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if ticket.OrganizationID != sc.OrganizationID {
		// A ticket in another tenant reads as missing, not forbidden.
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.ReporterID != sc.PrincipalID && !s.authorizeTicket(sc, ticket, domain.RoleMember) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// authorizeTicket evaluates the narrowest scope the ticket carries.
func (s *TicketService) authorizeTicket(sc auth.SessionContext, ticket *domain.Ticket, minRole domain.Role) bool {
	if ticket.ProjectID != nil {
		return auth.Authorize(sc, auth.Action{
			OrganizationID: ticket.OrganizationID,
			ProjectID:      ticket.ProjectID,
			MinRole:        minRole,
		})
	}
	return auth.Authorize(sc, auth.Action{
		OrganizationID: ticket.OrganizationID,
		DepartmentID:   &ticket.DepartmentID,
		MinRole:        minRole,
	})
}

func ticketRecipients(ticket *domain.Ticket, actorID string) []string {
	var recipients []string
	if ticket.ReporterID != actorID {
		recipients = append(recipients, ticket.ReporterID)
	}
	if ticket.AssigneeID != nil && *ticket.AssigneeID != actorID {
		recipients = append(recipients, *ticket.AssigneeID)
	}
	return recipients
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusClosed:     {},
	domain.TicketStatusCancelled:  {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
