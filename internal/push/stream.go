package push

import (
	"sync"
	"time"
)

// Stream — одно открытое server-to-client соединение. Владеет им
// только принявший его процесс; reconnect — это всегда новый Stream,
// Closed назад в Open не переходит.
type Stream struct {
	RecipientID string
	OpenedAt    time.Time

	mu     sync.Mutex
	closed bool
	ch     chan []byte
}

func newStream(recipientID string, buffer int) *Stream {
	if buffer <= 0 {
		buffer = 16
	}
	return &Stream{
		RecipientID: recipientID,
		OpenedAt:    time.Now().UTC(),
		ch:          make(chan []byte, buffer),
	}
}

// Events — канал, который дренит HTTP-обработчик стрима. Закрывается
// при закрытии стрима.
func (s *Stream) Events() <-chan []byte {
	return s.ch
}

// trySend — неблокирующая запись. false — стрим закрыт или буфер полон;
// переполненный буфер считается write failure и закрывает этот стрим.
func (s *Stream) trySend(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- data:
		return true
	default:
		return false
	}
}

func (s *Stream) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
