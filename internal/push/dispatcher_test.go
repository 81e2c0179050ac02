package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reybrally/notification-service/internal/adapters/redispub"
	"github.com/reybrally/notification-service/internal/logging"
)

func init() {
	logging.InitLogger()
}

func fanoutMsg(recipient, eventID, payload string) redispub.FanoutMessage {
	return redispub.FanoutMessage{
		RecipientID: recipient,
		EventID:     eventID,
		Payload:     []byte(payload),
	}
}

func TestDeliverReachesEveryStreamOfRecipient(t *testing.T) {
	reg := NewRegistry(4)
	d := NewDispatcher(reg, nil)

	// две вкладки одного получателя — по одному push на каждый стрим
	s1 := reg.Register("user-a")
	s2 := reg.Register("user-a")

	d.Deliver(fanoutMsg("user-a", "n-1", `{"id":"n-1"}`))

	assert.Equal(t, []byte(`{"id":"n-1"}`), <-s1.Events())
	assert.Equal(t, []byte(`{"id":"n-1"}`), <-s2.Events())
}

func TestDeliverIsolatesRecipients(t *testing.T) {
	reg := NewRegistry(4)
	d := NewDispatcher(reg, nil)

	sa := reg.Register("user-a")
	sb := reg.Register("user-b")

	d.Deliver(fanoutMsg("user-a", "n-1", `{"id":"n-1"}`))

	assert.Len(t, sa.Events(), 1)
	assert.Len(t, sb.Events(), 0, "push for A must never reach B's stream")
}

func TestDeliverAfterDisconnectIsNoop(t *testing.T) {
	reg := NewRegistry(4)
	d := NewDispatcher(reg, nil)

	s := reg.Register("user-a")
	reg.Unregister(s)

	// не паникует и ничего не пишет в закрытый стрим
	d.Deliver(fanoutMsg("user-a", "n-1", `{"id":"n-1"}`))
	assert.Equal(t, 0, reg.Len())
}

func TestSlowStreamClosedSiblingsUnaffected(t *testing.T) {
	reg := NewRegistry(1)
	d := NewDispatcher(reg, nil)

	slow := reg.Register("user-a")
	healthy := reg.Register("user-a")

	// забиваем буфер slow-стрима, не дренируя его
	d.Deliver(fanoutMsg("user-a", "n-1", `{"id":"n-1"}`))
	<-healthy.Events()

	// второй push: у slow буфер полон — его закроет, healthy доставится
	d.Deliver(fanoutMsg("user-a", "n-2", `{"id":"n-2"}`))

	require.Equal(t, 1, reg.Len(), "only the failing stream is closed")
	assert.Equal(t, []byte(`{"id":"n-2"}`), <-healthy.Events())

	streams := reg.Streams("user-a")
	require.Len(t, streams, 1)
	assert.Same(t, healthy, streams[0])

	// slow закрыт: буфер дочитывается, дальше канал закрыт
	data, ok := <-slow.Events()
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"id":"n-1"}`), data)
	_, ok = <-slow.Events()
	assert.False(t, ok)
}
