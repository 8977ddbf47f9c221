package protocol

import (
	"bytes"
	"io"
)

const (
	ClientGreeting = "hello, synctracker!"
	ServerGreeting = "hello, demo!"
)

// Handshake performs the client side of the greeting exchange on a blocking stream.
func Handshake(rw io.ReadWriter) error {
	if _, err := io.WriteString(rw, ClientGreeting); err != nil {
		return &HandshakeError{Err: err}
	}

	buf := make([]byte, len(ServerGreeting))
	if _, err := io.ReadFull(rw, buf); err != nil {
		return &HandshakeError{Err: err}
	}
	if !bytes.Equal(buf, []byte(ServerGreeting)) {
		return &GreetingMismatchError{Got: buf}
	}
	return nil
}

// ServerHandshake performs the tracker side of the greeting exchange.
func ServerHandshake(rw io.ReadWriter) error {
	buf := make([]byte, len(ClientGreeting))
	if _, err := io.ReadFull(rw, buf); err != nil {
		return &HandshakeError{Err: err}
	}
	if !bytes.Equal(buf, []byte(ClientGreeting)) {
		return &GreetingMismatchError{Got: buf}
	}
	if _, err := io.WriteString(rw, ServerGreeting); err != nil {
		return &HandshakeError{Err: err}
	}
	return nil
}
