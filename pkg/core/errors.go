package core

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors.
var (
	// ErrTransport marks failures to reach the backend (dial, TLS, timeout, reset).
	ErrTransport = errors.New("transport failed")
	// ErrDecode marks a response body that is not the expected JSON shape.
	ErrDecode = errors.New("decode failed")
	// ErrServer marks a non-2xx response.
	ErrServer = errors.New("server error")
	// ErrNotFound marks a 404 from the backend.
	ErrNotFound = errors.New("note not found")
	// ErrSuperseded is returned by a refresh that was cancelled because a newer
	// one started. The mutation that triggered it has already been applied.
	ErrSuperseded = errors.New("refresh superseded by a newer one")
)

// ServerError carries the status and message of a non-2xx response.
type ServerError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s: %s (status %d): %s", e.Op, ErrServer, e.StatusCode, msg)
}

// Unwrap lets errors.Is match ErrServer, and ErrNotFound for 404s.
func (e *ServerError) Unwrap() []error {
	if e.StatusCode == http.StatusNotFound {
		return []error{ErrServer, ErrNotFound}
	}
	return []error{ErrServer}
}

// TransportError wraps cause so that both ErrTransport and cause match.
func TransportError(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrTransport, cause)
}

// DecodeError wraps cause so that both ErrDecode and cause match.
func DecodeError(op string, cause error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrDecode, cause)
}
