package notifications

import (
	"context"

	domain "github.com/reybrally/notification-service/internal/domain/notification"
	"github.com/reybrally/notification-service/internal/pagination"
)

// IncomingEvent — событие от сервиса-продюсера до присвоения id и created_at.
type IncomingEvent struct {
	RecipientID string            `json:"recipient_id"`
	SenderID    string            `json:"sender_id,omitempty"`
	Kind        string            `json:"kind"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type ListFilters struct {
	RecipientID string
	Kind        *string
	OnlyUnread  bool
}

type PageRequest struct {
	Limit  int
	Cursor string
}

type Page struct {
	Data       []domain.Notification
	NextCursor *string
}

type NotificationCreator interface {
	CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

type NotificationGetter interface {
	GetNotification(ctx context.Context, id string) (domain.Notification, error)
}

type NotificationLister interface {
	// ListNotifications отдает до limit строк, упорядоченных по
	// (created_at DESC, id DESC), начиная строго после after.
	ListNotifications(ctx context.Context, f ListFilters, after *pagination.Key, limit int) ([]domain.Notification, error)
}

type NotificationMarker interface {
	MarkRead(ctx context.Context, id string) (domain.Notification, error)
}

type NotificationDeleter interface {
	DeleteNotification(ctx context.Context, id string) error
}

type UnreadCounter interface {
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

type NotificationRepo interface {
	NotificationCreator
	NotificationGetter
	NotificationLister
	NotificationMarker
	NotificationDeleter
	UnreadCounter
}
