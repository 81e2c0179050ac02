package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	cases := []struct {
		primary   string
		secondary string
	}{
		{uuid.New().String(), time.Now().UTC().Format(time.RFC3339Nano)},
		{"user-001", "2024-01-02T03:04:05.000000006Z"},
		{"id-with-=-padding", "key"},
		{"идентификатор", "ключ"},
	}

	for _, tc := range cases {
		cur := Encode(tc.primary, tc.secondary)
		p, s, err := Decode(cur)
		require.NoError(t, err)
		assert.Equal(t, tc.primary, p)
		assert.Equal(t, tc.secondary, s)
	}
}

func TestDecodeKeyEmptyCursorIsFirstPage(t *testing.T) {
	key, err := DecodeKey("")
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestDecodeRejectsTamperedCursor(t *testing.T) {
	cases := []string{
		"not base64 at all!!!",
		base64.URLEncoding.EncodeToString([]byte("no-delimiter-here")),
		base64.URLEncoding.EncodeToString([]byte("|missing-secondary")),
		base64.URLEncoding.EncodeToString([]byte("missing-primary|")),
		base64.URLEncoding.EncodeToString([]byte("")),
	}

	for _, cur := range cases {
		_, _, err := Decode(cur)
		assert.ErrorIs(t, err, ErrInvalidCursor, "cursor %q", cur)
	}
}

func TestDecodeKeyPropagatesInvalidCursor(t *testing.T) {
	_, err := DecodeKey("definitely-not-a-cursor")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}
