package redispub

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"
)

// FanoutMessage живёт только на pub/sub-проводе: не персистится, не
// ретраится, потеря допустима. Существует чтобы срезать латентность
// против поллинга durable-записи.
type FanoutMessage struct {
	RecipientID string          `json:"recipient_id"`
	EventID     string          `json:"event_id"`
	Payload     json.RawMessage `json:"payload"`
}

// Publisher — best-effort публикация "у пользователя U что-то
// изменилось" в канал, детерминированно выводимый из recipient id.
type Publisher interface {
	Publish(ctx context.Context, recipientID string, msg FanoutMessage) error
	Close() error
}

type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

type Config struct {
	Addr     string
	Password string
	DB       int
	// Prefix — неймспейс каналов, например "notify:user:".
	Prefix string
}

func NewRedisPublisher(cfg Config) *RedisPublisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisPublisher{rdb: rdb, prefix: cfg.Prefix}
}

func (p *RedisPublisher) channel(recipientID string) string {
	return p.prefix + recipientID
}

func (p *RedisPublisher) Publish(ctx context.Context, recipientID string, msg FanoutMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel(recipientID), data).Err()
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
