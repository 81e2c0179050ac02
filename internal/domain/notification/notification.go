package notification

import "time"

// Kind — типы нотификаций, которые шлют доменные сервисы.
const (
	KindFriendRequest  = "friend.request"
	KindFriendAccepted = "friend.accepted"
	KindPostLiked      = "post.liked"
	KindPostCommented  = "post.commented"
	KindStoryViewed    = "story.viewed"
	KindMessage        = "message.received"
)

type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	SenderID    string            `json:"sender_id,omitempty"`
	Kind        string            `json:"kind"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ReadAt      *time.Time        `json:"read_at,omitempty"`
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkRead помечает нотификацию прочитанной. Повторный вызов не сдвигает время.
func (n *Notification) MarkRead(at time.Time) {
	if n.ReadAt != nil {
		return
	}
	at = at.UTC()
	n.ReadAt = &at
}
