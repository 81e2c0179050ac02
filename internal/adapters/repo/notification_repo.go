package repo

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/reybrally/notification-service/internal/domain/notification"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

type NotificationRow struct {
	ID          string
	RecipientID string
	SenderID    *string
	Kind        string
	Content     string
	Metadata    []byte
	CreatedAt   time.Time
	ReadAt      *time.Time
}

func (r *NotificationRow) ToDomain() domain.Notification {
	n := domain.Notification{
		ID:          r.ID,
		RecipientID: r.RecipientID,
		Kind:        r.Kind,
		Content:     r.Content,
		CreatedAt:   r.CreatedAt,
		ReadAt:      r.ReadAt,
	}
	if r.SenderID != nil {
		n.SenderID = *r.SenderID
	}
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &n.Metadata)
	}
	return n
}

func metadataJSON(m map[string]string) ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
