package http

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	ErrMissingBaseURI  = errors.New("base URI is not configured")
	ErrUnsupportedBody = errors.New("body cannot be serialized for content type")
	ErrInvalidURL      = errors.New("invalid URL")
)

// TransportError is returned when an exchange could not complete: DNS
// resolution, connection, TLS, timeouts or reading the body. It is never
// retried by the client.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s: transport error: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Timeout reports whether the exchange failed because a deadline elapsed.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
