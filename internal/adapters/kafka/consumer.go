package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	kgo "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/reybrally/notification-service/internal/logging"
)

// Message — обертка над kafka-go с уже распарсенным Envelope.
type Message struct {
	Topic   string
	Key     []byte
	Headers map[string]string
	// Сырые байты, если нужно логировать/слать в DLQ
	Raw kgo.Message
	// Декодированный конверт с RawPayload (распарсим payload позднее по event_type)
	Envelope Envelope[json.RawMessage]
}

type Handler func(ctx context.Context, msg Message) error

// Consumer обслуживает несколько подписок: один и тот же инстанс читает
// и топик событий, и reply-топик correlation-слоя. Subscribe блокирует
// до отмены контекста; каждая подписка получает свой Reader.
type Consumer interface {
	Subscribe(ctx context.Context, topic string, groupID string, handler Handler) error
	Close() error
}

type ConsumerConfig struct {
	Brokers           []string
	ClientID          string
	MinBytes          int           // 1<<10
	MaxBytes          int           // 10<<20
	MaxWait           time.Duration // 100 * time.Millisecond
	SessionTimeout    time.Duration // 10 * time.Second
	RebalanceTimeout  time.Duration // 10 * time.Second
	HeartbeatInterval time.Duration // 3 * time.Second
	StartOffset       int64         // kgo.FirstOffset / kgo.LastOffset
	// Ретраи обработки
	MaxRetries uint64        // 5
	Backoff    time.Duration // 200 * time.Millisecond
}

type readerConsumer struct {
	cfg ConsumerConfig

	mu      sync.Mutex
	readers []*kgo.Reader
}

func NewConsumer(cfg ConsumerConfig) Consumer {
	return &readerConsumer{cfg: cfg}
}

func (c *readerConsumer) Subscribe(ctx context.Context, topic string, groupID string, handler Handler) error {
	r := kgo.NewReader(kgo.ReaderConfig{
		Brokers:           c.cfg.Brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          c.cfg.MinBytes,
		MaxBytes:          c.cfg.MaxBytes,
		MaxWait:           c.cfg.MaxWait,
		StartOffset:       c.cfg.StartOffset,
		SessionTimeout:    c.cfg.SessionTimeout,
		RebalanceTimeout:  c.cfg.RebalanceTimeout,
		HeartbeatInterval: c.cfg.HeartbeatInterval,
	})
	c.mu.Lock()
	c.readers = append(c.readers, r)
	c.mu.Unlock()
	defer r.Close()

	for {
		m, err := r.FetchMessage(ctx)
		if err != nil {
			// Контекст закрыт — graceful shutdown
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			// Временная ошибка брокера — подождём и продолжим
			time.Sleep(200 * time.Millisecond)
			continue
		}

		msg := toMessage(topic, m)

		// Ретраим обработчик с экспоненциальным backoff (at-least-once)
		bo := backoff.NewExponentialBackOff()
		bo.InitialInterval = c.cfg.Backoff
		hErr := backoff.Retry(func() error {
			return handler(ctx, msg)
		}, backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx))

		if ctx.Err() != nil {
			return nil
		}
		if hErr != nil {
			// сюда можно добавить отправку в DLQ через Producer (топик уже
			// зарезервирован в конфиге), пока логируем и коммитим, чтобы не застрять
			logging.LogError("handler failed after retries", hErr, logrus.Fields{
				"topic": topic, "key": string(m.Key),
			})
		}

		// Коммитим независимо (at-least-once семантика + идемпотентные обработчики)
		if err := r.CommitMessages(ctx, m); err != nil {
			// ошибка коммита — попробуем ещё раз на следующей итерации
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func (c *readerConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for _, r := range c.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.readers = nil
	return firstErr
}

func toMessage(topic string, m kgo.Message) Message {
	hdrs := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		hdrs[h.Key] = string(h.Value)
	}
	var env Envelope[json.RawMessage]
	_ = json.Unmarshal(m.Value, &env) // намеренно игнорим ошибку здесь — handler может перепарсить сам
	return Message{
		Topic:    topic,
		Key:      m.Key,
		Headers:  hdrs,
		Raw:      m,
		Envelope: env,
	}
}
