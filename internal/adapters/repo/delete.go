package repo

import (
	"context"

	"github.com/reybrally/notification-service/internal/app/notifications"
)

func (r *NotificationRepo) DeleteNotification(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notifications.ErrNotFound
	}
	return nil
}
