package resilience

import (
	"errors"
	"io"
	"net"
)

// TransientError marks a failed attempt as worth repeating: a transport
// failure or one of the retryable server statuses.
type TransientError struct {
	Err error
	// StatusCode is the HTTP status that caused the failure, or 0 when no
	// response was received.
	StatusCode int
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps err as transient.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// IsTransient reports whether err is worth another attempt: it carries a
// TransientError, or it is a network timeout or a truncated body that
// escaped classification.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF)
}

// IsTransientHTTPStatus reports whether a registry response status is worth
// retrying. Only 500, 502 and 503 qualify; every other non-2xx status is
// final on the first attempt.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 500, 502, 503:
		return true
	default:
		return false
	}
}
