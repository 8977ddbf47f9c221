package client

import "fmt"

// ConnectError means the tracker could not be reached at all.
type ConnectError struct {
	Address string
	Err     error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("client: connecting to tracker at %s: %v", e.Address, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// StreamError is an I/O failure on an established connection. The client is unusable afterwards.
type StreamError struct {
	Op  string
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("client: %s: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
