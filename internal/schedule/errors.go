package schedule

import "errors"

var (
	ErrInvalidWindow = errors.New("booking window is invalid")
	ErrPastDate      = errors.New("booking date is in the past")
	ErrDateTooFar    = errors.New("booking date is too far in the future")
)
