package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/unilib/portal-api/internal/model"
)

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, payload, sent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	n.ID = uuid.New()
	n.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Payload, n.Sent, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notifications SET sent = TRUE WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// LogEventKey records the idempotency marker. INSERT IGNORE keeps a
// duplicate key from being an error; zero affected rows means the key
// was already logged.
func (r *notificationRepository) LogEventKey(ctx context.Context, entry *model.NotificationLogEntry) (bool, error) {
	query := `
		INSERT IGNORE INTO notification_log (event_key, payload, created_at)
		VALUES (?, ?, ?)
	`
	entry.CreatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, entry.EventKey, entry.Payload, entry.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to log event key: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *notificationRepository) HasEventKey(ctx context.Context, eventKey string) (bool, error) {
	query := `SELECT 1 FROM notification_log WHERE event_key = ?`

	var one int
	err := r.db.GetContext(ctx, &one, query, eventKey)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check event key: %w", err)
	}
	return true, nil
}
