package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// ResourceRequestRepository manages resource requests.
type ResourceRequestRepository interface {
	Create(ctx context.Context, req *domain.ResourceRequest) error
	Update(ctx context.Context, req *domain.ResourceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ResourceRequest, error)
	ListByDepartment(ctx context.Context, departmentID, organizationID string, limit, offset int) ([]domain.ResourceRequest, error)
}

type resourceRequestRepository struct {
	pool *pgxpool.Pool
}

// NewResourceRequestRepository builds the repository.
func NewResourceRequestRepository(pool *pgxpool.Pool) ResourceRequestRepository {
	return &resourceRequestRepository{pool: pool}
}

func (r *resourceRequestRepository) Create(ctx context.Context, req *domain.ResourceRequest) error {
	const query = `
        INSERT INTO resource_requests (organization_id, department_id, requester_id, item_name, quantity, reason, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.OrganizationID,
		req.DepartmentID,
		req.RequesterID,
		req.ItemName,
		req.Quantity,
		req.Reason,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *resourceRequestRepository) Update(ctx context.Context, req *domain.ResourceRequest) error {
	const query = `
        UPDATE resource_requests SET status=$1, decider_id=$2, decision_note=$3, decided_at=$4, updated_at=NOW()
        WHERE id=$5 AND organization_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		req.Status,
		req.DeciderID,
		req.DecisionNote,
		req.DecidedAt,
		req.ID,
		req.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *resourceRequestRepository) GetByID(ctx context.Context, id string) (*domain.ResourceRequest, error) {
	const query = `
        SELECT id, organization_id, department_id, requester_id, item_name, quantity, reason, status,
               decider_id, decision_note, decided_at, created_at, updated_at
        FROM resource_requests WHERE id=$1`
	var req domain.ResourceRequest
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.OrganizationID,
		&req.DepartmentID,
		&req.RequesterID,
		&req.ItemName,
		&req.Quantity,
		&req.Reason,
		&req.Status,
		&req.DeciderID,
		&req.DecisionNote,
		&req.DecidedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *resourceRequestRepository) ListByDepartment(ctx context.Context, departmentID, organizationID string, limit, offset int) ([]domain.ResourceRequest, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, organization_id, department_id, requester_id, item_name, quantity, reason, status,
               decider_id, decision_note, decided_at, created_at, updated_at
        FROM resource_requests
        WHERE department_id=$1 AND organization_id=$2
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, departmentID, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ResourceRequest
	for rows.Next() {
		var req domain.ResourceRequest
		if err := rows.Scan(
			&req.ID,
			&req.OrganizationID,
			&req.DepartmentID,
			&req.RequesterID,
			&req.ItemName,
			&req.Quantity,
			&req.Reason,
			&req.Status,
			&req.DeciderID,
			&req.DecisionNote,
			&req.DecidedAt,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
