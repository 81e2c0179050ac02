package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domain "github.com/reybrally/notification-service/internal/domain/notification"
	"github.com/reybrally/notification-service/internal/logging"
)

// CreateNotification вставляет запись с серверным id и created_at.
// Дедупликации нет: повторная доставка того же логического события
// создаст дубликат (задокументированное ограничение ingestion-слоя).
func (r *NotificationRepo) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	meta, err := metadataJSON(n.Metadata)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("marshal metadata: %w", err)
	}

	const q = `
    INSERT INTO notifications (id, recipient_id, sender_id, kind, content, metadata, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, now())
    RETURNING id, recipient_id, sender_id, kind, content, metadata, created_at, read_at
  `

	var row NotificationRow
	err = r.pool.QueryRow(ctx, q,
		n.ID, n.RecipientID, nullableStr(n.SenderID), n.Kind, n.Content, meta,
	).Scan(
		&row.ID, &row.RecipientID, &row.SenderID, &row.Kind,
		&row.Content, &row.Metadata, &row.CreatedAt, &row.ReadAt,
	)
	if err != nil {
		logging.LogError("insert notification failed", err, logrus.Fields{
			"recipient_id": n.RecipientID, "kind": n.Kind,
		})
		return domain.Notification{}, err
	}
	return row.ToDomain(), nil
}
