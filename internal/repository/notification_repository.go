package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/workdesk/internal/domain"
)

// NotificationRepository persists the durable copy of notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID, organizationID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository builds the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (organization_id, recipient_id, kind, subject, body)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		n.OrganizationID,
		n.RecipientID,
		n.Kind,
		n.Subject,
		n.Body,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID, organizationID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT id, organization_id, recipient_id, kind, subject, body, read_at, created_at
        FROM notifications
        WHERE recipient_id=$1 AND organization_id=$2`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, query, recipientID, organizationID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.OrganizationID,
			&n.RecipientID,
			&n.Kind,
			&n.Subject,
			&n.Body,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	const query = `
        UPDATE notifications SET read_at=NOW()
        WHERE id=$1 AND recipient_id=$2 AND read_at IS NULL`
	cmd, err := r.pool.Exec(ctx, query, id, recipientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
