package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
)

// ErrInvalidCursor — клиент прислал курсор, который мы не выдавали.
// Наверх уходит как 400, никогда не интерпретируется как "с начала".
var ErrInvalidCursor = errors.New("invalid cursor")

const delimiter = "|"

// Key — составной ключ сортировки страницы: Secondary (например,
// created_at в RFC3339Nano) старше по порядку сортировки, Primary (id)
// разруливает равные Secondary.
type Key struct {
	Primary   string
	Secondary string
}

// Encode упаковывает пару ключей в непрозрачный курсор.
// Раскодирование выдает ровно ту же пару (round-trip identity).
func Encode(primary, secondary string) string {
	raw := secondary + delimiter + primary
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

// Decode разбирает курсор, выданный Encode. Любая другая строка — ErrInvalidCursor.
func Decode(cursor string) (primary, secondary string, err error) {
	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return "", "", ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), delimiter, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidCursor
	}
	return parts[1], parts[0], nil
}

// DecodeKey — Decode для пустого/непустого курсора: пустой курсор это
// "первая страница", nil ключ.
func DecodeKey(cursor string) (*Key, error) {
	if cursor == "" {
		return nil, nil
	}
	primary, secondary, err := Decode(cursor)
	if err != nil {
		return nil, err
	}
	return &Key{Primary: primary, Secondary: secondary}, nil
}
