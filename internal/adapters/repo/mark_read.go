package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/reybrally/notification-service/internal/app/notifications"
	domain "github.com/reybrally/notification-service/internal/domain/notification"
)

// MarkRead — единственный state transition поверх durable-записи кроме
// удаления. Повторная пометка уже прочитанной не сдвигает read_at.
func (r *NotificationRepo) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	const q = `
    UPDATE notifications
    SET read_at = COALESCE(read_at, now())
    WHERE id = $1
    RETURNING id, recipient_id, sender_id, kind, content, metadata, created_at, read_at
  `

	var row NotificationRow
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&row.ID, &row.RecipientID, &row.SenderID, &row.Kind,
		&row.Content, &row.Metadata, &row.CreatedAt, &row.ReadAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, notifications.ErrNotFound
		}
		return domain.Notification{}, err
	}
	return row.ToDomain(), nil
}
