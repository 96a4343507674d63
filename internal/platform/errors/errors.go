package apperrors

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrDataAccessUnavailable = errors.New("data access unavailable")
	ErrUnsupportedFormat     = errors.New("unsupported sample format")
)
