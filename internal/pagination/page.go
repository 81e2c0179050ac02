package pagination

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

func NormalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}

// Trim реализует общую политику "fetch limit+1": rows должны быть
// получены с лимитом limit+1 в порядке (secondary DESC, primary DESC).
// Если пришло больше limit строк — есть следующая страница, лишняя
// строка отрезается, курсор строится по последней ВОЗВРАЩЕННОЙ строке.
// Это единственная реализация пагинации; каждый list-эндпоинт ходит сюда.
func Trim[T any](rows []T, limit int, keys func(T) (primary, secondary string)) ([]T, *string) {
	if len(rows) <= limit {
		return rows, nil
	}
	rows = rows[:limit]
	last := rows[len(rows)-1]
	primary, secondary := keys(last)
	cursor := Encode(primary, secondary)
	return rows, &cursor
}
