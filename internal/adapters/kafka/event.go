package kafka

import "time"

// Заголовки, которыми correlation-слой связывает запрос и ответ.
const (
	HeaderCorrelationID = "correlation_id"
	HeaderReplyTopic    = "reply_topic"
)

// Канонические типы событий. Продюсер и консьюмер договариваются через
// этот реестр, а не через строковые литералы по месту.
const (
	EventNotificationCreate = "notification.create"
	EventNotificationRead   = "notification.read"
	EventNotificationDelete = "notification.delete"
	EventUserExists         = "user.exists"
	EventUserExistsReply    = "user.exists.reply"
)

type Envelope[T any] struct {
	EventType  string    `json:"event_type"`  // "notification.create"
	Version    int       `json:"version"`     // 1
	OccurredAt time.Time `json:"occurred_at"` // UTC
	EntityID   string    `json:"entity_id"`   // id сущности, дублирует key
	Payload    T         `json:"payload"`
	Meta       Meta      `json:"meta"`
}

type Meta struct {
	Producer string `json:"producer"` // "notification-service"
	TraceID  string `json:"trace_id"`
	Source   string `json:"source"` // "http-api" | "seeder" | ...
}

// Полезные нагрузки событий нотификаций.

type NotificationCreate struct {
	RecipientID string            `json:"recipient_id"`
	SenderID    string            `json:"sender_id,omitempty"`
	Kind        string            `json:"kind"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type NotificationRead struct {
	NotificationID string `json:"notification_id"`
}

type NotificationDelete struct {
	NotificationID string `json:"notification_id"`
}

// Запрос/ответ к users-сервису через correlation-слой.

type UserExistsRequest struct {
	UserID string `json:"user_id"`
}

type UserExistsReply struct {
	UserID string `json:"user_id"`
	Exists bool   `json:"exists"`
}
