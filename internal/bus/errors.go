package bus

import "errors"

var (
	// ErrTimeout: коррелированный вызов не дождался ответа в отведённое
	// окно. Это at-most-once видимость ответа, не эффекта: удалённая
	// сторона могла успеть выполнить side effect.
	ErrTimeout = errors.New("call timed out")

	// ErrUnknownService — логическое имя отсутствует в статической
	// таблице роутера. Фатально на старте, не глотать.
	ErrUnknownService = errors.New("unknown service")

	// ErrUnknownEvent — тип события не зарегистрирован за сервисом.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrNoReplySubscription — клиент собран без консьюмера и не может
	// принимать ответы; Call на таком клиенте — ошибка конфигурации.
	ErrNoReplySubscription = errors.New("client has no reply subscription")

	// ErrNoReplyAddress — входящий запрос не несёт reply_topic/correlation_id.
	ErrNoReplyAddress = errors.New("request carries no reply address")
)
