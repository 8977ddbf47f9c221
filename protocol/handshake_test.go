package protocol

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedConn struct {
	in  *bytes.Reader
	out bytes.Buffer
}

func (c *scriptedConn) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c *scriptedConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func TestHandshakeOverPipe(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() { done <- ServerHandshake(server) }()

	require.NoError(t, Handshake(client))
	require.NoError(t, <-done)
}

func TestHandshakeWritesGreeting(t *testing.T) {
	t.Parallel()

	conn := &scriptedConn{in: bytes.NewReader([]byte(ServerGreeting))}
	require.NoError(t, Handshake(conn))
	assert.Equal(t, ClientGreeting, conn.out.String())
}

func TestHandshakeMismatch(t *testing.T) {
	t.Parallel()

	conn := &scriptedConn{in: bytes.NewReader([]byte("hello, world"))}
	err := Handshake(conn)

	var mismatch *GreetingMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []byte("hello, world"), mismatch.Got)
}

func TestHandshakeShortReply(t *testing.T) {
	t.Parallel()

	conn := &scriptedConn{in: bytes.NewReader([]byte("hello"))}
	err := Handshake(conn)

	var hsErr *HandshakeError
	require.True(t, errors.As(err, &hsErr))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestServerHandshakeRejectsStranger(t *testing.T) {
	t.Parallel()

	conn := &scriptedConn{in: bytes.NewReader([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))}
	err := ServerHandshake(conn)

	var mismatch *GreetingMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Zero(t, conn.out.Len())
}
