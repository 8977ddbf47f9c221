// Package trackertest runs an in-process sync tracker on a loopback TCP port for tests.
package trackertest

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/robmorgan/halosync/protocol"
)

// Timeout bounds every wait in this package.
var Timeout = 2 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithGreeting makes the server answer the handshake with greeting instead of the real one.
func WithGreeting(greeting string) Option {
	return func(s *Server) {
		s.greeting = greeting
	}
}

// Server accepts clients, completes the handshake and records what they send.
type Server struct {
	t        testing.TB
	ln       net.Listener
	greeting string
	conns    chan *Conn

	mu     sync.Mutex
	open   []*Conn
	closed bool
}

// NewServer starts listening on 127.0.0.1 with a random port. It is closed when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("trackertest: listen: %v", err)
	}
	s := &Server{
		t:        t,
		ln:       ln,
		greeting: protocol.ServerGreeting,
		conns:    make(chan *Conn, 16),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// Addr is the host:port clients should dial.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Accept returns the next client that completed the handshake.
func (s *Server) Accept() *Conn {
	s.t.Helper()
	select {
	case c := <-s.conns:
		return c
	case <-time.After(Timeout):
		s.t.Fatalf("trackertest: no client connected within %s", Timeout)
		return nil
	}
}

// Close stops listening and drops every connection.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	open := s.open
	s.mu.Unlock()

	s.ln.Close()
	for _, c := range open {
		c.Close()
	}
}

func (s *Server) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handshake(conn)
	}
}

func (s *Server) handshake(conn net.Conn) {
	if err := s.greet(conn); err != nil {
		conn.Close()
		return
	}

	c := &Conn{conn: conn, cmds: make(chan protocol.Command, 256)}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.open = append(s.open, c)
	s.mu.Unlock()

	go c.readLoop()
	s.conns <- c
}

func (s *Server) greet(conn net.Conn) error {
	if s.greeting == protocol.ServerGreeting {
		return protocol.ServerHandshake(conn)
	}
	buf := make([]byte, len(protocol.ClientGreeting))
	if _, err := io.ReadFull(conn, buf); err != nil {
		return err
	}
	_, err := io.WriteString(conn, s.greeting)
	return err
}

// Conn is the tracker's end of one client connection.
type Conn struct {
	conn      net.Conn
	cmds      chan protocol.Command
	closeOnce sync.Once
}

func (c *Conn) readLoop() {
	defer close(c.cmds)
	for {
		cmd, err := protocol.ReadClientCommand(c.conn)
		if err != nil {
			return
		}
		c.cmds <- cmd
	}
}

// NextCommand waits for the next command the client sent.
func (c *Conn) NextCommand(t testing.TB) protocol.Command {
	t.Helper()
	select {
	case cmd, ok := <-c.cmds:
		if !ok {
			t.Fatalf("trackertest: client connection closed")
		}
		return cmd
	case <-time.After(Timeout):
		t.Fatalf("trackertest: no command from client within %s", Timeout)
		return nil
	}
}

// NoCommand fails the test if the client sends anything within d.
func (c *Conn) NoCommand(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case cmd, ok := <-c.cmds:
		if ok {
			t.Fatalf("trackertest: unexpected command %#v", cmd)
		}
	case <-time.After(d):
	}
}

// WaitClosed blocks until the client hangs up.
func (c *Conn) WaitClosed(t testing.TB) {
	t.Helper()
	deadline := time.After(Timeout)
	for {
		select {
		case _, ok := <-c.cmds:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("trackertest: client still connected after %s", Timeout)
			return
		}
	}
}

// Send writes cmds to the client as one contiguous write.
func (c *Conn) Send(t testing.TB, cmds ...protocol.Command) {
	t.Helper()
	var buf []byte
	for _, cmd := range cmds {
		var err error
		if buf, err = protocol.Encode(buf, cmd); err != nil {
			t.Fatalf("trackertest: encode %#v: %v", cmd, err)
		}
	}
	c.SendRaw(t, buf)
}

// SendRaw writes b to the client unchanged.
func (c *Conn) SendRaw(t testing.TB, b []byte) {
	t.Helper()
	if _, err := io.Copy(c.conn, bytes.NewReader(b)); err != nil {
		t.Fatalf("trackertest: write: %v", err)
	}
}

// Close hangs up on the client.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
	})
}
