package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/reybrally/notification-service/internal/app/notifications"
	domain "github.com/reybrally/notification-service/internal/domain/notification"
	"github.com/reybrally/notification-service/internal/push"
)

type NotificationHandlers struct {
	svc      serviceInterface
	registry *push.Registry
}

type serviceInterface interface {
	Ingest(ctx context.Context, ev notifications.IncomingEvent) (domain.Notification, error)
	GetNotification(ctx context.Context, id string) (domain.Notification, error)
	List(ctx context.Context, f notifications.ListFilters, p notifications.PageRequest) (notifications.Page, error)
	MarkRead(ctx context.Context, id string) (domain.Notification, error)
	DeleteNotification(ctx context.Context, id string) error
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}

func NewNotificationHandlers(svc serviceInterface, registry *push.Registry) *NotificationHandlers {
	return &NotificationHandlers{svc: svc, registry: registry}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

type NotificationResponse struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	SenderID    string            `json:"sender_id,omitempty"`
	Kind        string            `json:"kind"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
}

func ToResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		SenderID:    n.SenderID,
		Kind:        n.Kind,
		Content:     n.Content,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
		ReadAt:      n.ReadAt,
	}
}

// ToResponseList — helper для массива
func ToResponseList(src []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(src))
	for _, n := range src {
		out = append(out, ToResponse(n))
	}
	return out
}
