package validation

import (
	"errors"
	"fmt"

	"github.com/reybrally/notification-service/internal/app/notifications"
	domain "github.com/reybrally/notification-service/internal/domain/notification"
)

var knownKinds = map[string]struct{}{
	domain.KindFriendRequest:  {},
	domain.KindFriendAccepted: {},
	domain.KindPostLiked:      {},
	domain.KindPostCommented:  {},
	domain.KindStoryViewed:    {},
	domain.KindMessage:        {},
}

const maxContentLen = 2048

func IsValidEvent(ev notifications.IncomingEvent) error {
	if ev.RecipientID == "" {
		return errors.New("recipient_id is required")
	}
	if ev.Kind == "" {
		return errors.New("kind is required")
	}
	if _, ok := knownKinds[ev.Kind]; !ok {
		return fmt.Errorf("unknown kind %q", ev.Kind)
	}
	if ev.Content == "" {
		return errors.New("content is required")
	}
	if len(ev.Content) > maxContentLen {
		return fmt.Errorf("content exceeds %d bytes", maxContentLen)
	}
	return nil
}
