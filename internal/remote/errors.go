package remote

import (
	"errors"
	"fmt"
)

// badResponseError covers a missing or invalid endpoint and responses that
// do not carry a string "text" field.
type badResponseError struct{ reason string }

func (e badResponseError) Error() string { return "remote: bad response: " + e.reason }

// ErrBadResponse constructs a badResponseError.
func ErrBadResponse(reason string) error { return badResponseError{reason: reason} }

// IsBadResponse reports whether err is a bad-response error.
func IsBadResponse(err error) bool {
	var e badResponseError
	return errors.As(err, &e)
}

// ServerError is returned for non-2xx responses.
type ServerError struct {
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("remote: server returned %d: %s", e.Status, e.Body)
}

// IsServerError reports whether err is a *ServerError.
func IsServerError(err error) bool {
	var e *ServerError
	return errors.As(err, &e)
}
