package bus

import "fmt"

// ServiceIdentity — wire-идентичность логического сервиса. Собирается
// один раз из статической конфигурации; все продюсеры и консьюмеры
// резолвят имена через одну таблицу, чтобы генерация идентификаторов
// была централизованной и бесколлизионной.
type ServiceIdentity struct {
	LogicalName     string
	ClientID        string
	ConsumerGroupID string
	RequestTopic    string
	ReplyTopic      string
	// Events — канонические типы событий, которые сервис принимает.
	Events []string
}

// Router — иммутабельная таблица logical name → ServiceIdentity.
// Никаких ретраев и кеша сверх самой таблицы.
type Router struct {
	table  map[string]ServiceIdentity
	events map[string]map[string]struct{}
}

func NewRouter(identities ...ServiceIdentity) *Router {
	r := &Router{
		table:  make(map[string]ServiceIdentity, len(identities)),
		events: make(map[string]map[string]struct{}, len(identities)),
	}
	for _, id := range identities {
		r.table[id.LogicalName] = id
		evs := make(map[string]struct{}, len(id.Events))
		for _, e := range id.Events {
			evs[e] = struct{}{}
		}
		r.events[id.LogicalName] = evs
	}
	return r
}

func (r *Router) Resolve(logicalName string) (ServiceIdentity, error) {
	id, ok := r.table[logicalName]
	if !ok {
		return ServiceIdentity{}, fmt.Errorf("%w: %q", ErrUnknownService, logicalName)
	}
	return id, nil
}

// ValidateEvent проверяет тип события на границе роутера, а не
// доверяет строковым литералам по соглашению.
func (r *Router) ValidateEvent(logicalName, eventType string) error {
	evs, ok := r.events[logicalName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownService, logicalName)
	}
	if _, ok := evs[eventType]; !ok {
		return fmt.Errorf("%w: %q for service %q", ErrUnknownEvent, eventType, logicalName)
	}
	return nil
}
