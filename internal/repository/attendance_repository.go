package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// AttendanceRepository manages attendance records.
type AttendanceRepository interface {
	Create(ctx context.Context, record *domain.AttendanceRecord) error
	SetCheckOut(ctx context.Context, record *domain.AttendanceRecord) error
	GetOpenByUser(ctx context.Context, userID, organizationID string) (*domain.AttendanceRecord, error)
	ListByUser(ctx context.Context, userID, organizationID string, limit, offset int) ([]domain.AttendanceRecord, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository builds the repository.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

func (r *attendanceRepository) Create(ctx context.Context, record *domain.AttendanceRecord) error {
	const query = `
        INSERT INTO attendance_records (organization_id, user_id, check_in, note)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.OrganizationID,
		record.UserID,
		record.CheckIn,
		record.Note,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *attendanceRepository) SetCheckOut(ctx context.Context, record *domain.AttendanceRecord) error {
	const query = `
        UPDATE attendance_records SET check_out=$1, note=$2
        WHERE id=$3 AND organization_id=$4`
	cmd, err := r.pool.Exec(ctx, query, record.CheckOut, record.Note, record.ID, record.OrganizationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *attendanceRepository) GetOpenByUser(ctx context.Context, userID, organizationID string) (*domain.AttendanceRecord, error) {
	const query = `
        SELECT id, organization_id, user_id, check_in, check_out, note, created_at
        FROM attendance_records
        WHERE user_id=$1 AND organization_id=$2 AND check_out IS NULL
        ORDER BY check_in DESC
        LIMIT 1`
	var record domain.AttendanceRecord
	if err := r.pool.QueryRow(ctx, query, userID, organizationID).Scan(
		&record.ID,
		&record.OrganizationID,
		&record.UserID,
		&record.CheckIn,
		&record.CheckOut,
		&record.Note,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepository) ListByUser(ctx context.Context, userID, organizationID string, limit, offset int) ([]domain.AttendanceRecord, error) {
	if limit <= 0 {
		limit = 31
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, organization_id, user_id, check_in, check_out, note, created_at
        FROM attendance_records
        WHERE user_id=$1 AND organization_id=$2
        ORDER BY check_in DESC
        LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, userID, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AttendanceRecord
	for rows.Next() {
		var record domain.AttendanceRecord
		if err := rows.Scan(
			&record.ID,
			&record.OrganizationID,
			&record.UserID,
			&record.CheckIn,
			&record.CheckOut,
			&record.Note,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
