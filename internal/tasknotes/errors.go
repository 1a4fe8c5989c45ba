package tasknotes

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies API failures so callers can branch without string
// matching.
type ErrorKind string

const (
	// ErrConnection covers refused or unreachable endpoints.
	ErrConnection ErrorKind = "connection"
	// ErrTimeout covers requests that exceeded the configured deadline.
	ErrTimeout ErrorKind = "timeout"
	// ErrHTTP covers non-2xx responses and success=false envelopes.
	ErrHTTP ErrorKind = "http"
	// ErrParse covers responses that could not be decoded.
	ErrParse ErrorKind = "parse"
)

// APIError is the only error type returned by Client methods.
type APIError struct {
	Kind   ErrorKind
	Op     string // remote operation, e.g. "list tasks"
	Status int    // HTTP status for ErrHTTP, 0 otherwise
	Body   string // trimmed response body for ErrHTTP
	Err    error  // underlying cause, if any
}

func (e *APIError) Error() string {
	switch e.Kind {
	case ErrHTTP:
		if e.Body != "" {
			return fmt.Sprintf("tasknotes: %s failed (HTTP %d): %s", e.Op, e.Status, e.Body)
		}
		return fmt.Sprintf("tasknotes: %s failed (HTTP %d)", e.Op, e.Status)
	case ErrTimeout:
		return fmt.Sprintf("tasknotes: %s timed out", e.Op)
	case ErrConnection:
		return fmt.Sprintf("tasknotes: %s: API unreachable: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("tasknotes: %s: malformed response: %v", e.Op, e.Err)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// classifyTransport maps an http.Client error onto an APIError kind.
func classifyTransport(op string, err error) *APIError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Kind: ErrTimeout, Op: op, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Kind: ErrTimeout, Op: op, Err: err}
	}
	return &APIError{Kind: ErrConnection, Op: op, Err: err}
}
