package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// ProjectRepository manages project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.Project, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository builds the repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (organization_id, department_id, name, description, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		project.OrganizationID,
		project.DepartmentID,
		project.Name,
		project.Description,
		project.IsActive,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) Update(ctx context.Context, project *domain.Project) error {
	const query = `
        UPDATE projects SET department_id=$1, name=$2, description=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5 AND organization_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		project.DepartmentID,
		project.Name,
		project.Description,
		project.IsActive,
		project.ID,
		project.OrganizationID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	const query = `
        SELECT id, organization_id, department_id, name, description, is_active, created_at, updated_at
        FROM projects WHERE id=$1`
	var project domain.Project
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.OrganizationID,
		&project.DepartmentID,
		&project.Name,
		&project.Description,
		&project.IsActive,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) ListByOrganization(ctx context.Context, organizationID string) ([]domain.Project, error) {
	const query = `
        SELECT id, organization_id, department_id, name, description, is_active, created_at, updated_at
        FROM projects WHERE organization_id=$1 AND is_active = TRUE
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.OrganizationID,
			&project.DepartmentID,
			&project.Name,
			&project.Description,
			&project.IsActive,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}
