package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/app/notifications"
	domain "github.com/reybrally/notification-service/internal/domain/notification"
	"github.com/reybrally/notification-service/internal/logging"
	"github.com/reybrally/notification-service/internal/pagination"
)

// ListNotifications — keyset-пагинация по (created_at DESC, id DESC).
// after — составной ключ последней строки предыдущей страницы; строки
// выбираются строго после него. limit передаётся уже с запасом +1,
// решение "есть ли следующая страница" принимает общий pagination.Trim.
func (r *NotificationRepo) ListNotifications(ctx context.Context, f notifications.ListFilters, after *pagination.Key, limit int) ([]domain.Notification, error) {
	var (
		sb   strings.Builder
		args []any
		n    = 1
	)

	sb.WriteString(`
    SELECT id, recipient_id, sender_id, kind, content, metadata, created_at, read_at
    FROM notifications
    WHERE recipient_id = $1
  `)
	args = append(args, f.RecipientID)
	n++

	if f.Kind != nil {
		sb.WriteString(fmt.Sprintf(" AND kind = $%d", n))
		args = append(args, *f.Kind)
		n++
	}
	if f.OnlyUnread {
		sb.WriteString(" AND read_at IS NULL")
	}
	if after != nil {
		ts, err := time.Parse(time.RFC3339Nano, after.Secondary)
		if err != nil {
			return nil, pagination.ErrInvalidCursor
		}
		sb.WriteString(fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", n, n+1))
		args = append(args, ts, after.Primary)
		n += 2
	}

	sb.WriteString(" ORDER BY created_at DESC, id DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", n))
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		logging.LogError("list notifications query failed", err, logrus.Fields{
			"recipient_id": f.RecipientID,
		})
		return nil, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var row NotificationRow
		if err := rows.Scan(
			&row.ID, &row.RecipientID, &row.SenderID, &row.Kind,
			&row.Content, &row.Metadata, &row.CreatedAt, &row.ReadAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row.ToDomain())
	}
	return out, rows.Err()
}
