package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// MembershipRepository manages membership edges, the ground truth for every
// scope decision. Lookups are always organization-bounded.
type MembershipRepository interface {
	GetEdge(ctx context.Context, principalID string, scopeType domain.ScopeType, scopeID, organizationID string) (*domain.Membership, error)
	ListByPrincipal(ctx context.Context, principalID, organizationID string) ([]domain.Membership, error)
	// ListProjectEdges returns project memberships ordered by creation time
	// ascending, then id ascending, so default-project selection is stable.
	ListProjectEdges(ctx context.Context, principalID, organizationID string) ([]domain.Membership, error)
	Upsert(ctx context.Context, m *domain.Membership) error
	Delete(ctx context.Context, principalID string, scopeType domain.ScopeType, scopeID, organizationID string) error
}

type membershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository returns a Postgres-backed implementation.
func NewMembershipRepository(pool *pgxpool.Pool) MembershipRepository {
	return &membershipRepository{pool: pool}
}

func (r *membershipRepository) GetEdge(ctx context.Context, principalID string, scopeType domain.ScopeType, scopeID, organizationID string) (*domain.Membership, error) {
	const query = `
        SELECT id, principal_id, organization_id, scope_type, scope_id, role, created_at
        FROM memberships
        WHERE principal_id=$1 AND scope_type=$2 AND scope_id=$3 AND organization_id=$4`

	var m domain.Membership
	if err := r.pool.QueryRow(ctx, query, principalID, scopeType, scopeID, organizationID).Scan(
		&m.ID,
		&m.PrincipalID,
		&m.OrganizationID,
		&m.ScopeType,
		&m.ScopeID,
		&m.Role,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *membershipRepository) ListByPrincipal(ctx context.Context, principalID, organizationID string) ([]domain.Membership, error) {
	const query = `
        SELECT id, principal_id, organization_id, scope_type, scope_id, role, created_at
        FROM memberships
        WHERE principal_id=$1 AND organization_id=$2
        ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, principalID, organizationID)
}

func (r *membershipRepository) ListProjectEdges(ctx context.Context, principalID, organizationID string) ([]domain.Membership, error) {
	const query = `
        SELECT id, principal_id, organization_id, scope_type, scope_id, role, created_at
        FROM memberships
        WHERE principal_id=$1 AND organization_id=$2 AND scope_type='PROJECT'
        ORDER BY created_at ASC, id ASC`
	return r.list(ctx, query, principalID, organizationID)
}

func (r *membershipRepository) Upsert(ctx context.Context, m *domain.Membership) error {
	const query = `
        INSERT INTO memberships (principal_id, organization_id, scope_type, scope_id, role)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (principal_id, scope_type, scope_id)
        DO UPDATE SET role = EXCLUDED.role
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		m.PrincipalID,
		m.OrganizationID,
		m.ScopeType,
		m.ScopeID,
		m.Role,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *membershipRepository) Delete(ctx context.Context, principalID string, scopeType domain.ScopeType, scopeID, organizationID string) error {
	const query = `
        DELETE FROM memberships
        WHERE principal_id=$1 AND scope_type=$2 AND scope_id=$3 AND organization_id=$4`
	_, err := r.pool.Exec(ctx, query, principalID, scopeType, scopeID, organizationID)
	return err
}

func (r *membershipRepository) list(ctx context.Context, query string, args ...any) ([]domain.Membership, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Membership
	for rows.Next() {
		var m domain.Membership
		if err := rows.Scan(
			&m.ID,
			&m.PrincipalID,
			&m.OrganizationID,
			&m.ScopeType,
			&m.ScopeID,
			&m.Role,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
