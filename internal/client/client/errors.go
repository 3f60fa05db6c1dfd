package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable    = errors.New("server unavailable")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrTimeout        = errors.New("server did not respond in time")
	ErrNotPDF         = errors.New("server did not return a valid PDF")
	ErrEmptyPDF       = errors.New("received PDF is empty")
	ErrBadResponse    = errors.New("malformed server response")
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCertificate = errors.New("invalid certificate or wrong password")
)

// APIError is a non-2xx answer. Err optionally carries a sentinel for
// statuses that mean something specific: ErrUnauthorized for every 401,
// ErrUserNotFound or ErrBadCertificate for some endpoints.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		if e.Message == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }
