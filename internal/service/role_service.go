package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// RoleService manages role assignment within departments and projects.
type RoleService struct {
	memberships repository.MembershipRepository
	users       repository.UserRepository
	dispatcher  events.Dispatcher
}

// RoleDependencies bundles repositories for the role service.
type RoleDependencies struct {
	MembershipRepo repository.MembershipRepository
	UserRepo       repository.UserRepository
	Dispatcher     events.Dispatcher
}

// AssignRoleInput describes an assignment request. The role arrives as a
// free-form name and is normalized before any comparison.
type AssignRoleInput struct {
	TargetUserID string
	RoleName     string
	ScopeType    domain.ScopeType
	ScopeID      string
}

// NewRoleService builds the service.
func NewRoleService(deps RoleDependencies) *RoleService {
	return &RoleService{
		memberships: deps.MembershipRepo,
		users:       deps.UserRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// AssignRole upserts a membership edge for the target user.
//
// Gating: granting role R requires the actor's own role in the target scope
// to be at least R; touching a target who already holds a role additionally
// requires the actor's role to be strictly above it. Denials carry no detail.
func (s *RoleService) AssignRole(ctx context.Context, actor auth.SessionContext, input AssignRoleInput) (*domain.Membership, error) {
	newRole := domain.NormalizeRole(input.RoleName)
	if newRole == "" {
		return nil, apperrors.NewValidationError("unknown role", nil)
	}
	if input.ScopeType != domain.ScopeDepartment && input.ScopeType != domain.ScopeProject {
		return nil, apperrors.NewValidationError("invalid scope type", nil)
	}

	target, err := s.users.GetByID(ctx, input.TargetUserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewForbidden("access denied")
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if target.OrganizationID != actor.OrganizationID {
		return nil, apperrors.NewForbidden("access denied")
	}

	actorRole, err := s.actorRoleInScope(ctx, actor, input.ScopeType, input.ScopeID)
	if err != nil {
		return nil, err
	}
	if !auth.CanAssignRole(actorRole, newRole) {
		return nil, apperrors.NewForbidden("access denied")
	}

	existing, err := s.memberships.GetEdge(ctx, input.TargetUserID, input.ScopeType, input.ScopeID, actor.OrganizationID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if existing != nil && !auth.CanModifyRole(actorRole, existing.Role) {
		return nil, apperrors.NewForbidden("access denied")
	}

	edge := &domain.Membership{
		PrincipalID:    input.TargetUserID,
		OrganizationID: actor.OrganizationID,
		ScopeType:      input.ScopeType,
		ScopeID:        input.ScopeID,
		Role:           newRole,
	}
	if err := s.memberships.Upsert(ctx, edge); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventRoleAssigned,
		OrganizationID: actor.OrganizationID,
		Actor:          events.Actor{Type: actor.PrincipalType, PrincipalID: actor.PrincipalID},
		Recipients:     []string{input.TargetUserID},
		Payload: events.RoleAssignedPayload{
			TargetID:  input.TargetUserID,
			ScopeType: input.ScopeType,
			ScopeID:   input.ScopeID,
			Role:      newRole,
		},
	})
	return edge, nil
}

// RevokeRole removes a membership edge, subject to the same strict
// modification gating as reassignment.
func (s *RoleService) RevokeRole(ctx context.Context, actor auth.SessionContext, targetUserID string, scopeType domain.ScopeType, scopeID string) error {
	existing, err := s.memberships.GetEdge(ctx, targetUserID, scopeType, scopeID, actor.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewForbidden("access denied")
		}
		return apperrors.NewStoreUnavailable(err)
	}

	actorRole, err := s.actorRoleInScope(ctx, actor, scopeType, scopeID)
	if err != nil {
		return err
	}
	if !auth.CanModifyRole(actorRole, existing.Role) {
		return apperrors.NewForbidden("access denied")
	}

	if err := s.memberships.Delete(ctx, targetUserID, scopeType, scopeID, actor.OrganizationID); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// actorRoleInScope resolves the actor's own role within the scope it is
// trying to administer. Role mutations re-prove the actor's standing against
// the store; a role claimed by a stale token must not authorize a grant. An
// organization Admin administers any scope inside its own organization.
func (s *RoleService) actorRoleInScope(ctx context.Context, actor auth.SessionContext, scopeType domain.ScopeType, scopeID string) (domain.Role, error) {
	if actor.PrincipalType == domain.PrincipalTypeUser {
		user, err := s.users.GetByID(ctx, actor.PrincipalID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return "", nil
			}
			return "", apperrors.NewStoreUnavailable(err)
		}
		if user.OrganizationID != actor.OrganizationID || user.Status != domain.UserStatusActive {
			return "", nil
		}
		if user.OrganizationRole == domain.RoleAdmin {
			return domain.RoleAdmin, nil
		}
	} else if actor.OrganizationRole == domain.RoleAdmin {
		// Organization principals carry no user row; the org account
		// itself is the admin identity.
		return domain.RoleAdmin, nil
	}

	edge, err := s.memberships.GetEdge(ctx, actor.PrincipalID, scopeType, scopeID, actor.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", apperrors.NewStoreUnavailable(err)
	}
	return edge.Role, nil
}
