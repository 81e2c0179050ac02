package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndUnregister(t *testing.T) {
	r := NewRegistry(4)

	a1 := r.Register("user-a")
	a2 := r.Register("user-a")
	b1 := r.Register("user-b")

	assert.Equal(t, 3, r.Len())
	assert.Len(t, r.Streams("user-a"), 2)
	assert.Len(t, r.Streams("user-b"), 1)

	r.Unregister(a1)
	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.Streams("user-a"), 1)

	r.Unregister(a2)
	r.Unregister(b1)
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Streams("user-a"))
	assert.Empty(t, r.Streams("user-b"))
}

func TestUnregisterIsIdempotent(t *testing.T) {
	r := NewRegistry(4)
	s := r.Register("user-a")

	r.Unregister(s)
	r.Unregister(s) // повторный disconnect того же стрима — no-op

	assert.Equal(t, 0, r.Len())
}

func TestClosedStreamRejectsWrites(t *testing.T) {
	r := NewRegistry(4)
	s := r.Register("user-a")

	require.True(t, s.trySend([]byte("one")))
	r.Unregister(s)

	assert.False(t, s.trySend([]byte("two")), "closed stream must not accept writes")

	// канал закрыт: буферизованное сообщение читается, потом — закрытие
	data, ok := <-s.Events()
	assert.True(t, ok)
	assert.Equal(t, []byte("one"), data)
	_, ok = <-s.Events()
	assert.False(t, ok)
}

func TestStreamFullBufferFailsSend(t *testing.T) {
	r := NewRegistry(1)
	s := r.Register("user-a")

	assert.True(t, s.trySend([]byte("one")))
	assert.False(t, s.trySend([]byte("two")), "full buffer counts as write failure")
}
