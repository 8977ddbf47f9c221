package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrWouldBlock signals that a non-blocking source has no data right now. It is not a failure.
	ErrWouldBlock = errors.New("protocol: would block")

	ErrTrackNameTooLong = errors.New("protocol: track name length does not fit in 32 bits")
	ErrUnknownCommand   = errors.New("protocol: unknown command")
)

// HandshakeError is an I/O failure while exchanging greetings.
type HandshakeError struct {
	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("protocol: handshake with tracker failed: %v", e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// GreetingMismatchError means the peer answered, but is not a rocket tracker (or client).
type GreetingMismatchError struct {
	Got []byte
}

func (e *GreetingMismatchError) Error() string {
	return fmt.Sprintf("protocol: unexpected greeting %q", e.Got)
}
