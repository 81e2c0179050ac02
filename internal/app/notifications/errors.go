package notifications

import "errors"

var (
	ErrNotFound         = errors.New("notification not found")
	ErrInvalidData      = errors.New("invalid data")
	ErrRecipientUnknown = errors.New("recipient unknown")
	ErrUnexpected       = errors.New("unexpected error")
)
