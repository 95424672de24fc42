package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// OrganizationRepository defines persistence access for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	Update(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetByEmail(ctx context.Context, email string) (*domain.Organization, error)
}

type organizationRepository struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepository returns a Postgres-backed implementation.
func NewOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &organizationRepository{pool: pool}
}

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (name, email, domain, password_hash, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		org.Name,
		org.Email,
		org.Domain,
		org.PasswordHash,
		org.Active,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
}

func (r *organizationRepository) Update(ctx context.Context, org *domain.Organization) error {
	const query = `
        UPDATE organizations SET name=$1, email=$2, domain=$3, password_hash=$4, active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.pool.Exec(ctx, query,
		org.Name,
		org.Email,
		org.Domain,
		org.PasswordHash,
		org.Active,
		org.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, email, domain, password_hash, active, created_at, updated_at
        FROM organizations WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *organizationRepository) GetByEmail(ctx context.Context, email string) (*domain.Organization, error) {
	const query = `
        SELECT id, name, email, domain, password_hash, active, created_at, updated_at
        FROM organizations WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

func (r *organizationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&org.ID,
		&org.Name,
		&org.Email,
		&org.Domain,
		&org.PasswordHash,
		&org.Active,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &org, nil
}
