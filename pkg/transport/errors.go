package transport

import (
	"errors"
	"fmt"
)

// Transport errors.
var (
	ErrHandshakeTimeout  = errors.New("handshake timeout")
	ErrHandshakeIO       = errors.New("handshake i/o error")
	ErrHandshakeProtocol = errors.New("handshake protocol error")
	ErrApplicationRead   = errors.New("application read error")
	ErrSessionClosed     = errors.New("session closed")
)

// HandshakeTimeoutError is returned when the handshake did not complete
// within the iteration budget.
type HandshakeTimeoutError struct {
	// Budget is the configured number of iterations.
	Budget int
}

// Error implements the error interface.
func (e *HandshakeTimeoutError) Error() string {
	return fmt.Sprintf("handshake did not finish within %d iterations", e.Budget)
}

// Is reports whether target is ErrHandshakeTimeout.
func (e *HandshakeTimeoutError) Is(target error) bool {
	return target == ErrHandshakeTimeout
}

func handshakeIOError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrHandshakeIO, op, err)
}

func handshakeProtocolError(err error) error {
	return fmt.Errorf("%w: %w", ErrHandshakeProtocol, err)
}

func applicationReadError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrApplicationRead, op, err)
}
