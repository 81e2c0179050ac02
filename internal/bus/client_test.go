package bus_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kaf "github.com/reybrally/notification-service/internal/adapters/kafka"
	"github.com/reybrally/notification-service/internal/bus"
	"github.com/reybrally/notification-service/internal/logging"
)

func init() {
	logging.InitLogger()
}

/* ---------- in-process транспорт поверх Producer/Consumer ---------- */

type memTransport struct {
	mu   sync.Mutex
	subs map[string][]kaf.Handler
}

func newMemTransport() *memTransport {
	return &memTransport{subs: make(map[string][]kaf.Handler)}
}

func (t *memTransport) addSub(topic string, h kaf.Handler) {
	t.mu.Lock()
	t.subs[topic] = append(t.subs[topic], h)
	t.mu.Unlock()
}

func (t *memTransport) hasSub(topic string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs[topic]) > 0
}

func (t *memTransport) dispatch(topic string, key, value []byte, headers map[string]string) {
	var env kaf.Envelope[json.RawMessage]
	_ = json.Unmarshal(value, &env)
	msg := kaf.Message{
		Topic:    topic,
		Key:      key,
		Headers:  headers,
		Envelope: env,
	}
	if msg.Headers == nil {
		msg.Headers = map[string]string{}
	}

	t.mu.Lock()
	handlers := append([]kaf.Handler(nil), t.subs[topic]...)
	t.mu.Unlock()

	for _, h := range handlers {
		// асинхронно, как настоящий брокер
		go h(context.Background(), msg)
	}
}

type memProducer struct{ t *memTransport }

func (p *memProducer) Publish(_ context.Context, topic string, key, value []byte, headers map[string]string) error {
	p.t.dispatch(topic, key, value, headers)
	return nil
}

func (p *memProducer) PublishJSON(ctx context.Context, topic string, key []byte, value any, headers map[string]string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return p.Publish(ctx, topic, key, data, headers)
}

func (p *memProducer) Close() error { return nil }

type memConsumer struct{ t *memTransport }

func (c *memConsumer) Subscribe(ctx context.Context, topic, _ string, handler kaf.Handler) error {
	c.t.addSub(topic, handler)
	<-ctx.Done()
	return nil
}

func (c *memConsumer) Close() error { return nil }

/* ---------- setup ---------- */

const (
	usersRequests = "users-requests"
	selfReplies   = "notification-service-replies"
)

func newTestClient(t *testing.T, tr *memTransport, timeout time.Duration) *bus.Client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	self := bus.ServiceIdentity{
		LogicalName:     "notifications",
		ClientID:        "notification-service",
		ConsumerGroupID: "notification-service",
		RequestTopic:    "notifications-events",
		ReplyTopic:      selfReplies,
		Events:          []string{"notification.create"},
	}
	c := bus.NewClient(ctx, self, testRouter(), &memProducer{t: tr}, &memConsumer{t: tr}, timeout)

	// подписка на reply-топик оформляется конструктором в фоне
	require.Eventually(t, func() bool { return tr.hasSub(selfReplies) }, time.Second, 5*time.Millisecond)
	return c
}

// responder подвешивает на топик users-requests обработчик, который
// отвечает через produce-only клиент (serving-сторона).
func attachResponder(t *testing.T, tr *memTransport, handle func(replier *bus.Client, msg kaf.Message)) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ident := bus.ServiceIdentity{
		LogicalName:     "users",
		ClientID:        "users-service",
		ConsumerGroupID: "users-service",
		RequestTopic:    usersRequests,
	}
	replier := bus.NewClient(ctx, ident, testRouter(), &memProducer{t: tr}, nil, time.Second)

	tr.addSub(usersRequests, func(_ context.Context, msg kaf.Message) error {
		handle(replier, msg)
		return nil
	})
}

/* ---------- tests ---------- */

func TestCallTimesOutWithoutResponder(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, 80*time.Millisecond)

	start := time.Now()
	_, err := c.Call(context.Background(), "users", "user.exists", kaf.UserExistsRequest{UserID: "u1"})
	assert.ErrorIs(t, err, bus.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second, "call must not hang past the timeout")
}

func TestCallReceivesCorrelatedReply(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, time.Second)

	attachResponder(t, tr, func(replier *bus.Client, msg kaf.Message) {
		err := replier.Reply(context.Background(), msg, kaf.EventUserExistsReply, kaf.UserExistsReply{UserID: "u1", Exists: true})
		assert.NoError(t, err)
	})

	reply, err := c.Call(context.Background(), "users", "user.exists", kaf.UserExistsRequest{UserID: "u1"})
	require.NoError(t, err)

	parsed, err := bus.UnmarshalReply[kaf.UserExistsReply](reply)
	require.NoError(t, err)
	assert.True(t, parsed.Exists)
}

func TestDuplicateReplyResolvesOnce(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, time.Second)

	attachResponder(t, tr, func(replier *bus.Client, msg kaf.Message) {
		payload := kaf.UserExistsReply{UserID: "u1", Exists: true}
		assert.NoError(t, replier.Reply(context.Background(), msg, kaf.EventUserExistsReply, payload))
		assert.NoError(t, replier.Reply(context.Background(), msg, kaf.EventUserExistsReply, payload))
	})

	_, err := c.Call(context.Background(), "users", "user.exists", kaf.UserExistsRequest{UserID: "u1"})
	require.NoError(t, err)

	// второй ответ с тем же correlation id молча дропается
	require.Eventually(t, func() bool { return c.Dropped() == 1 }, time.Second, 5*time.Millisecond)
}

func TestLateReplyAfterTimeoutIsDropped(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, 50*time.Millisecond)

	attachResponder(t, tr, func(replier *bus.Client, msg kaf.Message) {
		time.Sleep(250 * time.Millisecond)
		_ = replier.Reply(context.Background(), msg, kaf.EventUserExistsReply, kaf.UserExistsReply{Exists: true})
	})

	_, err := c.Call(context.Background(), "users", "user.exists", kaf.UserExistsRequest{UserID: "u1"})
	assert.ErrorIs(t, err, bus.ErrTimeout)

	require.Eventually(t, func() bool { return c.Dropped() == 1 }, time.Second, 5*time.Millisecond)
}

func TestConcurrentCallsResolveIndependently(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, time.Second)

	attachResponder(t, tr, func(replier *bus.Client, msg kaf.Message) {
		var req kaf.UserExistsRequest
		assert.NoError(t, json.Unmarshal(msg.Envelope.Payload, &req))
		_ = replier.Reply(context.Background(), msg, kaf.EventUserExistsReply, kaf.UserExistsReply{
			UserID: req.UserID,
			Exists: req.UserID != "missing",
		})
	})

	var wg sync.WaitGroup
	for _, userID := range []string{"u1", "u2", "missing", "u3"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			reply, err := c.Call(context.Background(), "users", "user.exists", kaf.UserExistsRequest{UserID: userID})
			if !assert.NoError(t, err) {
				return
			}
			parsed, err := bus.UnmarshalReply[kaf.UserExistsReply](reply)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, userID, parsed.UserID, "reply must match its own request")
			assert.Equal(t, userID != "missing", parsed.Exists)
		}(userID)
	}
	wg.Wait()
}

func TestCallUnknownServiceFailsFast(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, time.Second)

	_, err := c.Call(context.Background(), "ghosts", "user.exists", nil)
	assert.ErrorIs(t, err, bus.ErrUnknownService)
}

func TestCallUnknownEventFailsFast(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, time.Second)

	_, err := c.Call(context.Background(), "users", "user.obliterate", nil)
	assert.ErrorIs(t, err, bus.ErrUnknownEvent)
}

func TestProducerOnlyClientCannotCall(t *testing.T) {
	tr := newMemTransport()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ident := bus.ServiceIdentity{LogicalName: "users", ClientID: "users-service", RequestTopic: usersRequests}
	c := bus.NewClient(ctx, ident, testRouter(), &memProducer{t: tr}, nil, time.Second)

	_, err := c.Call(context.Background(), "users", "user.exists", nil)
	assert.ErrorIs(t, err, bus.ErrNoReplySubscription)
}

func TestEmitIsFireAndForget(t *testing.T) {
	tr := newMemTransport()
	c := newTestClient(t, tr, time.Second)

	received := make(chan kaf.Message, 1)
	tr.addSub("notifications-events", func(_ context.Context, msg kaf.Message) error {
		received <- msg
		return nil
	})

	err := c.Emit(context.Background(), "notifications", "notification.create", "n-1", kaf.NotificationCreate{
		RecipientID: "u1", Kind: "post.liked", Content: "liked your post",
	})
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Equal(t, "notification.create", msg.Envelope.EventType)
		assert.Empty(t, msg.Headers[kaf.HeaderCorrelationID], "emit must not expect a reply")
	case <-time.After(time.Second):
		t.Fatal("emitted event never reached the subscriber")
	}

	assert.EqualValues(t, 0, c.Dropped())
}
