package redispub

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/logging"
)

// Subscriber — broadcast-подписка на неймспейс каналов fan-out'а.
// Redis pub/sub доставляет каждому подписчику каждое сообщение, так что
// при нескольких процессах диспетчера сообщение дойдёт до того, кто
// держит live-стрим получателя, кем бы ни была сделана запись.
type Subscriber interface {
	Subscribe(ctx context.Context, handler func(FanoutMessage)) error
	Close() error
}

type RedisSubscriber struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisSubscriber(cfg Config) *RedisSubscriber {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisSubscriber{rdb: rdb, prefix: cfg.Prefix}
}

// Subscribe блокирует до отмены контекста. Кривые сообщения дропаются
// с warn-логом: push-путь best-effort, источник истины — durable store.
func (s *RedisSubscriber) Subscribe(ctx context.Context, handler func(FanoutMessage)) error {
	sub := s.rdb.PSubscribe(ctx, s.prefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg FanoutMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				logging.LogWarn("fanout message unmarshal failed", err, logrus.Fields{
					"channel": m.Channel,
				})
				continue
			}
			handler(msg)
		}
	}
}

func (s *RedisSubscriber) Close() error {
	return s.rdb.Close()
}
