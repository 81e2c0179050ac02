package bus

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	kaf "github.com/reybrally/notification-service/internal/adapters/kafka"
	"github.com/reybrally/notification-service/internal/logging"
)

// pendingSlot держит место под ровно один ответ. Канал с буфером 1:
// резолвер, выигравший LoadAndDelete, кладёт ответ не блокируясь.
type pendingSlot struct {
	ch chan []byte
}

// Client надстраивает call-with-reply поверх publish-only транспорта:
// публикуем запрос с correlation_id, ждём коррелированный ответ на
// своём reply-топике, либо фейлим вызов по таймауту.
//
// Подписка на reply-топик оформляется один раз, в конструкторе, до
// любого Call — подписка "после первого вызова" невозможна по
// построению, это свойство времени старта, а не рантайма.
type Client struct {
	self     ServiceIdentity
	router   *Router
	producer kaf.Producer

	pending sync.Map // correlation id -> *pendingSlot
	timeout time.Duration

	// emit-only клиент: собран без консьюмера, Call невозможен.
	producerOnly bool

	// Ответы, пришедшие после таймаута или повторно. Дропаются молча,
	// счётчик — для тестов и диагностики.
	dropped atomic.Int64
}

// NewClient подписывает consumer на reply-топик self и возвращает
// готовый к вызовам клиент. consumer == nil даёт emit-only клиента:
// Emit работает, Call падает с ErrNoReplySubscription.
func NewClient(ctx context.Context, self ServiceIdentity, router *Router, producer kaf.Producer, consumer kaf.Consumer, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &Client{
		self:     self,
		router:   router,
		producer: producer,
		timeout:  timeout,
	}
	if consumer != nil {
		go func() {
			if err := consumer.Subscribe(ctx, self.ReplyTopic, self.ConsumerGroupID, c.handleReply); err != nil {
				logging.LogError("reply subscription stopped", err, logrus.Fields{
					"topic": self.ReplyTopic, "group": self.ConsumerGroupID,
				})
			}
		}()
	} else {
		c.producerOnly = true
	}
	return c
}

// Call публикует запрос в топик сервиса и ждёт ответ с тем же
// correlation id. По таймауту слот вычищается и вызов завершается
// ErrTimeout; опоздавший ответ будет дропнут, не редоставлен.
func (c *Client) Call(ctx context.Context, service, eventType string, payload any) ([]byte, error) {
	if c.producerOnly {
		return nil, ErrNoReplySubscription
	}
	ident, err := c.router.Resolve(service)
	if err != nil {
		return nil, err
	}
	if err := c.router.ValidateEvent(service, eventType); err != nil {
		return nil, err
	}

	corrID := uuid.NewString()
	slot := &pendingSlot{ch: make(chan []byte, 1)}
	c.pending.Store(corrID, slot)

	env := kaf.Envelope[any]{
		EventType:  eventType,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		EntityID:   corrID,
		Payload:    payload,
		Meta:       kaf.Meta{Producer: c.self.ClientID, Source: "bus"},
	}
	headers := map[string]string{
		kaf.HeaderCorrelationID: corrID,
		kaf.HeaderReplyTopic:    c.self.ReplyTopic,
	}
	if err := c.producer.PublishJSON(ctx, ident.RequestTopic, []byte(corrID), env, headers); err != nil {
		c.pending.Delete(corrID)
		return nil, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case reply := <-slot.ch:
		return reply, nil
	case <-timer.C:
		return c.evict(corrID, slot, ErrTimeout)
	case <-ctx.Done():
		return c.evict(corrID, slot, ctx.Err())
	}
}

// evict снимает слот атомарно с резолвером: либо мы забрали слот и
// возвращаем failure, либо резолвер уже выиграл и ответ вот-вот в канале.
func (c *Client) evict(corrID string, slot *pendingSlot, failure error) ([]byte, error) {
	if _, ok := c.pending.LoadAndDelete(corrID); ok {
		return nil, failure
	}
	// LoadAndDelete выиграл резолвер: send в буферизованный канал уже
	// произошёл или происходит, короткое чтение не заблокирует.
	return <-slot.ch, nil
}

// Emit — fire-and-forget: слот не регистрируется, ответа не будет,
// блокируемся только до передачи транспорту.
func (c *Client) Emit(ctx context.Context, service, eventType string, entityID string, payload any) error {
	ident, err := c.router.Resolve(service)
	if err != nil {
		return err
	}
	if err := c.router.ValidateEvent(service, eventType); err != nil {
		return err
	}
	env := kaf.Envelope[any]{
		EventType:  eventType,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		EntityID:   entityID,
		Payload:    payload,
		Meta:       kaf.Meta{Producer: c.self.ClientID, Source: "bus"},
	}
	return c.producer.PublishJSON(ctx, ident.RequestTopic, []byte(entityID), env, nil)
}

// Reply — для serving-стороны: отвечает на входящий запрос по адресу
// из его заголовков, echo correlation_id.
func (c *Client) Reply(ctx context.Context, req kaf.Message, eventType string, payload any) error {
	corrID := req.Headers[kaf.HeaderCorrelationID]
	replyTopic := req.Headers[kaf.HeaderReplyTopic]
	if corrID == "" || replyTopic == "" {
		return ErrNoReplyAddress
	}
	env := kaf.Envelope[any]{
		EventType:  eventType,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		EntityID:   corrID,
		Payload:    payload,
		Meta:       kaf.Meta{Producer: c.self.ClientID, Source: "bus"},
	}
	return c.producer.PublishJSON(ctx, replyTopic, []byte(corrID), env, map[string]string{
		kaf.HeaderCorrelationID: corrID,
	})
}

// Dropped — сколько ответов пришло без ожидающего слота.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

func (c *Client) handleReply(_ context.Context, msg kaf.Message) error {
	corrID := msg.Headers[kaf.HeaderCorrelationID]
	if corrID == "" {
		return nil
	}
	v, ok := c.pending.LoadAndDelete(corrID)
	if !ok {
		// опоздавший или повторный ответ — дропаем без side effects
		c.dropped.Add(1)
		logging.LogDebug("late reply dropped", logrus.Fields{"correlation_id": corrID})
		return nil
	}
	reply := make([]byte, len(msg.Envelope.Payload))
	copy(reply, msg.Envelope.Payload)
	v.(*pendingSlot).ch <- reply
	return nil
}

// UnmarshalReply — типизированная распаковка payload ответа.
func UnmarshalReply[T any](reply []byte) (T, error) {
	var out T
	err := json.Unmarshal(reply, &out)
	return out, err
}
