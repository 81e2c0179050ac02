package cache

import domain "github.com/reybrally/notification-service/internal/domain/notification"

type Cache interface {
	Set(key string, n domain.Notification) error
	Get(key string) (domain.Notification, error)
	Delete(key string) error
}
