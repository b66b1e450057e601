package common

import "errors"

var (
	// ErrInvalidToken is returned when a token cannot be parsed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmptyID is returned when a bucket or file id is blank.
	ErrEmptyID = errors.New("empty identifier")
)
