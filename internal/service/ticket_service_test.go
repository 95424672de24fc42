package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/repository"
)

type mockTicketRepo struct {
	tickets map[string]domain.Ticket
	nextID  int
}

func (m *mockTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.nextID++
	ticket.ID = "ticket-" + strconv.Itoa(m.nextID)
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *mockTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *mockTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (m *mockTicketRepo) ListWithFilter(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range m.tickets {
		result = append(result, ticket)
	}
	return result, nil
}

func newTicketFixture() (*TicketService, *mockTicketRepo) {
	tickets := &mockTicketRepo{tickets: map[string]domain.Ticket{}}
	departments := &mockDepartmentRepo{departments: map[string]domain.Department{
		"dept-1": {ID: "dept-1", OrganizationID: "org-1", Name: "Engineering", IsActive: true},
	}}
	users := &mockUserRepo{users: map[string]domain.User{
		"assignee-1": {ID: "assignee-1", OrganizationID: "org-1", Status: domain.UserStatusActive},
	}}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		DepartmentRepo: departments,
		ProjectRepo:    &mockProjectRepo{projects: map[string]domain.Project{}},
		UserRepo:       users,
	})
	return svc, tickets
}

func deptMemberContext() auth.SessionContext {
	dept := "dept-1"
	return auth.SessionContext{
		PrincipalID:      "user-1",
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
		DepartmentID:     &dept,
		DepartmentRole:   domain.RoleMember,
	}
}

func TestCreateTicketRequiresDepartmentScope(t *testing.T) {
	svc, _ := newTicketFixture()

	// No department selected, plain org member.
	sc := auth.SessionContext{
		PrincipalID:      "user-1",
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   "org-1",
		OrganizationRole: domain.RoleMember,
	}
	_, err := svc.CreateTicket(context.Background(), sc, TicketCreateInput{
		DepartmentID: "dept-1",
		Title:        "broken build",
	})
	wantErrorCode(t, err, "FORBIDDEN")
}

func TestCreateTicketDefaultsAndKey(t *testing.T) {
	svc, _ := newTicketFixture()

	ticket, err := svc.CreateTicket(context.Background(), deptMemberContext(), TicketCreateInput{
		DepartmentID: "dept-1",
		Title:        "  broken build  ",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q, want OPEN", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Errorf("priority = %q, want MEDIUM default", ticket.Priority)
	}
	if ticket.Title != "broken build" {
		t.Errorf("title = %q, want trimmed", ticket.Title)
	}
	if len(ticket.ExternalKey) == 0 {
		t.Error("external key not generated")
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	svc, tickets := newTicketFixture()
	sc := deptMemberContext()

	ticket, err := svc.CreateTicket(context.Background(), sc, TicketCreateInput{
		DepartmentID: "dept-1",
		Title:        "broken build",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// OPEN -> RESOLVED is not a legal transition.
	_, err = svc.UpdateStatus(context.Background(), sc, ticket.ID, domain.TicketStatusResolved, "")
	wantErrorCode(t, err, "CONFLICT")

	if _, err := svc.UpdateStatus(context.Background(), sc, ticket.ID, domain.TicketStatusInProgress, ""); err != nil {
		t.Fatalf("OPEN -> IN_PROGRESS: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), sc, ticket.ID, domain.TicketStatusResolved, ""); err != nil {
		t.Fatalf("IN_PROGRESS -> RESOLVED: %v", err)
	}
	closed, err := svc.UpdateStatus(context.Background(), sc, ticket.ID, domain.TicketStatusClosed, "done")
	if err != nil {
		t.Fatalf("RESOLVED -> CLOSED: %v", err)
	}
	if closed.ClosedAt == nil {
		t.Error("closing must stamp closed_at")
	}

	// Closed is terminal.
	_, err = svc.UpdateStatus(context.Background(), sc, ticket.ID, domain.TicketStatusInProgress, "")
	wantErrorCode(t, err, "CONFLICT")

	stored := tickets.tickets[ticket.ID]
	if stored.Status != domain.TicketStatusClosed {
		t.Errorf("persisted status = %q, want CLOSED", stored.Status)
	}
}

func TestAssignTicketRequiresManager(t *testing.T) {
	svc, _ := newTicketFixture()
	sc := deptMemberContext()

	ticket, err := svc.CreateTicket(context.Background(), sc, TicketCreateInput{
		DepartmentID: "dept-1",
		Title:        "broken build",
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}

	// Member cannot assign.
	_, err = svc.AssignTicket(context.Background(), sc, ticket.ID, "assignee-1")
	wantErrorCode(t, err, "FORBIDDEN")

	manager := sc
	manager.DepartmentRole = domain.RoleManager
	assigned, err := svc.AssignTicket(context.Background(), manager, ticket.ID, "assignee-1")
	if err != nil {
		t.Fatalf("AssignTicket: %v", err)
	}
	if assigned.AssigneeID == nil || *assigned.AssigneeID != "assignee-1" {
		t.Error("assignee not set")
	}
}

func TestGetTicketOtherTenantReadsAsMissing(t *testing.T) {
	svc, tickets := newTicketFixture()
	tickets.tickets["foreign"] = domain.Ticket{
		ID:             "foreign",
		OrganizationID: "org-2",
		DepartmentID:   "dept-9",
		ReporterID:     "someone-else",
		Status:         domain.TicketStatusOpen,
	}

	_, err := svc.GetTicket(context.Background(), deptMemberContext(), "foreign")
	wantErrorCode(t, err, "NOT_FOUND")
}

func TestTransitionTable(t *testing.T) {
	legal := []struct{ from, to domain.TicketStatus }{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress},
		{domain.TicketStatusOpen, domain.TicketStatusCancelled},
		{domain.TicketStatusInProgress, domain.TicketStatusResolved},
		{domain.TicketStatusInProgress, domain.TicketStatusCancelled},
		{domain.TicketStatusResolved, domain.TicketStatusClosed},
		{domain.TicketStatusResolved, domain.TicketStatusInProgress},
	}
	for _, tc := range legal {
		if !isValidTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be legal", tc.from, tc.to)
		}
	}
	illegal := []struct{ from, to domain.TicketStatus }{
		{domain.TicketStatusOpen, domain.TicketStatusClosed},
		{domain.TicketStatusClosed, domain.TicketStatusOpen},
		{domain.TicketStatusCancelled, domain.TicketStatusInProgress},
		{domain.TicketStatusOpen, domain.TicketStatusOpen},
	}
	for _, tc := range illegal {
		if isValidTransition(tc.from, tc.to) {
			t.Errorf("%s -> %s should be illegal", tc.from, tc.to)
		}
	}
}
