package c4c

import (
	"errors"
	"fmt"
)

// ErrNoCSRFToken means C4C did not hand out an anti-forgery token, so no
// mutating call can be made.
var ErrNoCSRFToken = errors.New("c4c: no csrf token returned")

// TransportError wraps connection, DNS, timeout and body read failures.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("c4c transport error on %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusError is returned by read calls that get a non-2xx answer.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("c4c: GET %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}
