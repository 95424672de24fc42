package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/config"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows for users and for
// organizations acting as their own principal.
type AuthService struct {
	organizations repository.OrganizationRepository
	users         repository.UserRepository
	memberships   repository.MembershipRepository
	resets        repository.PasswordResetRepository
	dispatcher    events.Dispatcher
	codec         *auth.TokenCodec
	bcryptCost    int
	resetTTL      time.Duration
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	OrganizationRepo  repository.OrganizationRepository
	UserRepo          repository.UserRepository
	MembershipRepo    repository.MembershipRepository
	PasswordResetRepo repository.PasswordResetRepository
	Dispatcher        events.Dispatcher
	Codec             *auth.TokenCodec
}

// LoginResult bundles the minted token with its session context.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Context   auth.SessionContext
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		organizations: deps.OrganizationRepo,
		users:         deps.UserRepo,
		memberships:   deps.MembershipRepo,
		resets:        deps.PasswordResetRepo,
		dispatcher:    deps.Dispatcher,
		codec:         deps.Codec,
		bcryptCost:    cfg.Auth.BcryptCost,
		resetTTL:      time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
	}
}

// RegisterOrganization creates a tenant and mints its admin session.
func (s *AuthService) RegisterOrganization(ctx context.Context, name, email, orgDomain, password string) (*domain.Organization, *LoginResult, error) {
	if _, err := s.organizations.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	org := &domain.Organization{
		Name:         name,
		Email:        email,
		Domain:       orgDomain,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.organizations.Create(ctx, org); err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}

	result, err := s.mintOrganizationSession(org)
	if err != nil {
		return nil, nil, err
	}
	return org, result, nil
}

// LoginOrganization authenticates an organization principal.
func (s *AuthService) LoginOrganization(ctx context.Context, email, password string) (*domain.Organization, *LoginResult, error) {
	org, err := s.organizations.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	if !org.Active {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(org.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	result, err := s.mintOrganizationSession(org)
	if err != nil {
		return nil, nil, err
	}
	return org, result, nil
}

// RegisterUser creates a user inside an organization. New users start as
// organization Members; scoped roles come from membership edges assigned
// later.
func (s *AuthService) RegisterUser(ctx context.Context, organizationID, name, email, password string) (*domain.User, *LoginResult, error) {
	org, err := s.organizations.GetByID(ctx, organizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewValidationError("unknown organization", nil)
		}
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	if !org.Active {
		return nil, nil, apperrors.NewValidationError("organization inactive", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		OrganizationID:   org.ID,
		Name:             name,
		Email:            email,
		PasswordHash:     hash,
		OrganizationRole: domain.RoleMember,
		Status:           domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}

	result, err := s.mintUserSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, result, nil
}

// LoginUser authenticates a user and mints a session carrying every
// membership the user holds, so scope can be switched without another
// store round trip for display purposes.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (*domain.User, *LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewUnauthorized("invalid credentials")
	}

	result, err := s.mintUserSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, result, nil
}

// ChangePassword verifies the current password before updating to a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, sc auth.SessionContext, currentPassword, newPassword string) error {
	if sc.PrincipalType != domain.PrincipalTypeUser {
		return apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, sc.PrincipalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.NewStoreUnavailable(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return nil
}

// RequestPasswordReset persists a one-time reset token for a user email.
// The response is identical whether or not the email exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.NewStoreUnavailable(err)
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:           events.EventPasswordResetRequested,
		OrganizationID: user.OrganizationID,
		Actor:          events.Actor{Type: domain.PrincipalTypeUser, PrincipalID: user.ID},
		Recipients:     []string{user.ID},
		Payload: events.PasswordResetRequestedPayload{
			UserID:    user.ID,
			ExpiresAt: token.ExpiresAt,
		},
	})
	return nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid reset token")
		}
		return apperrors.NewStoreUnavailable(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("invalid reset token")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid reset token")
		}
		return apperrors.NewStoreUnavailable(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewStoreUnavailable(err)
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

func (s *AuthService) mintOrganizationSession(org *domain.Organization) (*LoginResult, error) {
	sc := auth.SessionContext{
		PrincipalID:      org.ID,
		PrincipalType:    domain.PrincipalTypeOrganization,
		OrganizationID:   org.ID,
		OrganizationRole: domain.RoleAdmin,
	}
	token, expiresAt, err := s.codec.Encode(sc)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Context: sc}, nil
}

func (s *AuthService) mintUserSession(ctx context.Context, user *domain.User) (*LoginResult, error) {
	sc := auth.SessionContext{
		PrincipalID:      user.ID,
		PrincipalType:    domain.PrincipalTypeUser,
		OrganizationID:   user.OrganizationID,
		OrganizationRole: domain.NormalizeRole(string(user.OrganizationRole)),
	}

	all, err := s.memberships.ListByPrincipal(ctx, user.ID, user.OrganizationID)
	if err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}
	for _, edge := range all {
		switch edge.ScopeType {
		case domain.ScopeDepartment:
			if sc.DepartmentRoles == nil {
				sc.DepartmentRoles = make(map[string]domain.Role)
			}
			sc.DepartmentRoles[edge.ScopeID] = edge.Role
		case domain.ScopeProject:
			if sc.ProjectRoles == nil {
				sc.ProjectRoles = make(map[string]domain.Role)
			}
			sc.ProjectRoles[edge.ScopeID] = edge.Role
		}
	}

	token, expiresAt, err := s.codec.Encode(sc)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Context: sc}, nil
}
