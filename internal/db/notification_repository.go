package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"taskhub/internal/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `INSERT INTO notifications (id, user_id, task_id, message, read, created_at)
	 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(
		ctx, query, n.ID, n.UserID, n.TaskID, n.Message, n.Read, n.CreatedAt)
	return err
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Notification, error) {
	query := `SELECT id, user_id, task_id, message, read, created_at
	 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.TaskID, &n.Message, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}
