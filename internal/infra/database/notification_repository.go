package database

import (
	"context"
	"database/sql"
	"log"

	"github.com/lib/pq"
	"github.com/overseaspath/crm-backend/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, kind, title, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Kind,
		n.Title,
		n.Message,
		n.CreatedAt,
	)

	if err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			// Duplicate emission for the same id; the record already exists.
			return nil
		}
		log.Printf("notification insert failed: %v", err)
		return err
	}

	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID int) ([]*entity.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, user_id, kind, title, message, created_at FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}

	return out, rows.Err()
}
