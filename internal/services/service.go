package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/adapters/cache"
	"github.com/reybrally/notification-service/internal/adapters/redispub"
	"github.com/reybrally/notification-service/internal/app/notifications"
	domain "github.com/reybrally/notification-service/internal/domain/notification"
	"github.com/reybrally/notification-service/internal/logging"
	"github.com/reybrally/notification-service/internal/pagination"
	"github.com/reybrally/notification-service/internal/validation"
)

type NotificationService struct {
	repo   notifications.NotificationRepo
	cache  cache.Cache
	fanout redispub.Publisher
	users  RecipientChecker
}

func NewNotificationService(repo notifications.NotificationRepo, cache cache.Cache, fanout redispub.Publisher, users RecipientChecker) *NotificationService {
	return &NotificationService{repo: repo, cache: cache, fanout: fanout, users: users}
}

// Ingest: валидация → durable-запись → синхронный fan-out. Durable
// запись — источник истины: её ошибка уходит продюсеру, ошибка
// fan-out'а логируется и глотается (push best-effort). Дедупликации
// нет — ретрай продюсера создаст дубликат, это задокументированное
// ограничение, ключ идемпотентности должен принести сам продюсер.
func (serv *NotificationService) Ingest(ctx context.Context, ev notifications.IncomingEvent) (domain.Notification, error) {
	notifications.NormalizeEvent(&ev)
	if err := validation.IsValidEvent(ev); err != nil {
		return domain.Notification{}, fmt.Errorf("%w: %s", notifications.ErrInvalidData, err)
	}

	exists, err := serv.users.Exists(ctx, ev.RecipientID)
	if err != nil {
		// таймаут correlation-вызова уходит наверх как есть: продюсер
		// может ретраить (с риском дубликата)
		return domain.Notification{}, err
	}
	if !exists {
		return domain.Notification{}, notifications.ErrRecipientUnknown
	}

	n, err := serv.repo.CreateNotification(ctx, domain.Notification{
		RecipientID: ev.RecipientID,
		SenderID:    ev.SenderID,
		Kind:        ev.Kind,
		Content:     ev.Content,
		Metadata:    ev.Metadata,
	})
	if err != nil {
		return domain.Notification{}, err
	}
	_ = serv.cache.Set(n.ID, n)

	serv.publishFanout(ctx, n)
	return n, nil
}

func (serv *NotificationService) publishFanout(ctx context.Context, n domain.Notification) {
	snapshot, err := json.Marshal(n)
	if err != nil {
		logging.LogWarn("fanout snapshot marshal failed", err, logrus.Fields{"id": n.ID})
		return
	}
	err = serv.fanout.Publish(ctx, n.RecipientID, redispub.FanoutMessage{
		RecipientID: n.RecipientID,
		EventID:     n.ID,
		Payload:     snapshot,
	})
	if err != nil {
		// FanoutFailure: durable-запись уже успешна, наружу не отдаём
		logging.LogWarn("fanout publish failed", err, logrus.Fields{
			"id": n.ID, "recipient_id": n.RecipientID,
		})
	}
}

func (serv *NotificationService) GetNotification(ctx context.Context, id string) (domain.Notification, error) {
	if n, err := serv.cache.Get(id); err == nil {
		return n, nil
	}
	n, err := serv.repo.GetNotification(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	_ = serv.cache.Set(id, n)
	return n, nil
}

// List — единственный контракт чтения durable-записи: keyset-страница
// (created_at DESC, id DESC) с fetch limit+1 через общий pagination.Trim.
func (serv *NotificationService) List(ctx context.Context, f notifications.ListFilters, p notifications.PageRequest) (notifications.Page, error) {
	notifications.NormalizeListFilters(&f)
	limit := pagination.NormalizeLimit(p.Limit)

	after, err := pagination.DecodeKey(p.Cursor)
	if err != nil {
		return notifications.Page{}, err
	}

	rows, err := serv.repo.ListNotifications(ctx, f, after, limit+1)
	if err != nil {
		return notifications.Page{}, err
	}

	data, next := pagination.Trim(rows, limit, func(n domain.Notification) (string, string) {
		return n.ID, n.CreatedAt.UTC().Format(time.RFC3339Nano)
	})
	return notifications.Page{Data: data, NextCursor: next}, nil
}

func (serv *NotificationService) MarkRead(ctx context.Context, id string) (domain.Notification, error) {
	n, err := serv.repo.MarkRead(ctx, id)
	if err != nil {
		return domain.Notification{}, err
	}
	_ = serv.cache.Set(id, n)
	return n, nil
}

func (serv *NotificationService) DeleteNotification(ctx context.Context, id string) error {
	if err := serv.repo.DeleteNotification(ctx, id); err != nil {
		return err
	}
	_ = serv.cache.Delete(id)
	return nil
}

func (serv *NotificationService) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return serv.repo.CountUnread(ctx, recipientID)
}
