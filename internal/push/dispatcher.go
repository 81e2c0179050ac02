package push

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/adapters/redispub"
	"github.com/reybrally/notification-service/internal/logging"
)

// Dispatcher подписывается на broadcast-канал fan-out'а и пишет payload
// в каждый открытый локальный стрим получателя. Ошибка записи в один
// стрим закрывает только его — соседние стримы и другие получатели не
// затрагиваются.
type Dispatcher struct {
	registry *Registry
	sub      redispub.Subscriber
}

func NewDispatcher(registry *Registry, sub redispub.Subscriber) *Dispatcher {
	return &Dispatcher{registry: registry, sub: sub}
}

// Run блокирует до отмены контекста.
func (d *Dispatcher) Run(ctx context.Context) error {
	return d.sub.Subscribe(ctx, d.Deliver)
}

// Deliver — доставка одного FanoutMessage локальным стримам.
// Получатель без стримов в этом процессе — no-op, не ошибка.
func (d *Dispatcher) Deliver(msg redispub.FanoutMessage) {
	streams := d.registry.Streams(msg.RecipientID)
	if len(streams) == 0 {
		return
	}

	for _, s := range streams {
		if !s.trySend(msg.Payload) {
			// изоляция сбоя: закрываем только этот стрим
			d.registry.Unregister(s)
			logging.LogWarn("push stream write failed, stream closed", nil, logrus.Fields{
				"recipient_id": msg.RecipientID,
				"event_id":     msg.EventID,
			})
		}
	}
}
