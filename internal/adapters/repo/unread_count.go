package repo

import "context"

func (r *NotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	const q = `SELECT count(*) FROM notifications WHERE recipient_id = $1 AND read_at IS NULL`

	var count int64
	if err := r.pool.QueryRow(ctx, q, recipientID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
