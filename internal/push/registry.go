package push

import "sync"

// Registry — процесс-локальная таблица recipient id → открытые стримы.
// Один получатель может держать несколько стримов (вкладки, девайсы) —
// каждый регистрируется отдельно и broadcast должен дойти до каждого.
// Записи не шарятся между процессами: кросс-процессную доставку
// обеспечивает broadcast-канал fan-out'а, не реестр.
type Registry struct {
	mu         sync.RWMutex
	streams    map[string]map[*Stream]struct{}
	bufferSize int
}

func NewRegistry(bufferSize int) *Registry {
	return &Registry{
		streams:    make(map[string]map[*Stream]struct{}),
		bufferSize: bufferSize,
	}
}

// Register — переход Connecting→Open: стрим попадает в таблицу.
func (r *Registry) Register(recipientID string) *Stream {
	s := newStream(recipientID, r.bufferSize)

	r.mu.Lock()
	set, ok := r.streams[recipientID]
	if !ok {
		set = make(map[*Stream]struct{})
		r.streams[recipientID] = set
	}
	set[s] = struct{}{}
	r.mu.Unlock()

	return s
}

// Unregister — переход Open→Closed: disconnect, write failure или
// explicit close. Идемпотентен; Closed назад не открывается.
func (r *Registry) Unregister(s *Stream) {
	r.mu.Lock()
	if set, ok := r.streams[s.RecipientID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(r.streams, s.RecipientID)
		}
	}
	r.mu.Unlock()

	s.close()
}

// Streams — снимок открытых стримов получателя.
func (r *Registry) Streams(recipientID string) []*Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.streams[recipientID]
	if !ok {
		return nil
	}
	out := make([]*Stream, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, set := range r.streams {
		total += len(set)
	}
	return total
}
