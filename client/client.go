// Package client speaks the rocket protocol to a sync tracker over one TCP connection.
//
// A Client is not safe for concurrent use. It is meant to be driven once per frame by a
// single owner, normally a session.Session.
package client

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/robmorgan/halosync/logger"
	"github.com/robmorgan/halosync/protocol"
	"github.com/robmorgan/halosync/track"
	"github.com/sirupsen/logrus"
)

// DefaultAddress is where the editors listen unless told otherwise.
const DefaultAddress = "localhost:1338"

// DialFunc opens the transport to the tracker.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Option configures a Client.
type Option func(*Client)

// WithWriteTimeout bounds every write to the tracker. Zero means no bound.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.writeTimeout = d
	}
}

// WithLogger replaces the default component logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(c *Client) {
		c.log = entry
	}
}

// WithDialer replaces the TCP dialer used by Dial.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) {
		c.dial = dial
	}
}

// Client owns the connection, the frame decoder and the index-ordered track list.
type Client struct {
	conn         net.Conn
	dec          *protocol.Decoder
	tracks       *track.Tracks
	writeTimeout time.Duration
	dial         DialFunc
	log          *logrus.Entry
	buf          []byte
}

// Dial connects to the tracker at address and performs the handshake.
//
// Tracks already present in tracks are requested again, in order, so that the tracker's
// indices line up with ours. A nil tracks starts from an empty set. The deadline of ctx, if
// any, bounds the connect and the handshake.
func Dial(ctx context.Context, address string, tracks *track.Tracks, opts ...Option) (*Client, error) {
	c := newClient(tracks, opts...)

	conn, err := c.dial(ctx, "tcp", address)
	if err != nil {
		return nil, &ConnectError{Address: address, Err: err}
	}
	if err := c.start(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient runs the handshake over an already established connection.
func NewClient(ctx context.Context, conn net.Conn, tracks *track.Tracks, opts ...Option) (*Client, error) {
	c := newClient(tracks, opts...)
	if err := c.start(ctx, conn); err != nil {
		return nil, err
	}
	return c, nil
}

func newClient(tracks *track.Tracks, opts ...Option) *Client {
	if tracks == nil {
		tracks = track.NewTracks()
	}
	c := &Client{
		tracks: tracks,
		log:    logger.WithComponent("client"),
		buf:    make([]byte, 0, protocol.MaxFrameLen),
	}
	var d net.Dialer
	c.dial = d.DialContext
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) start(ctx context.Context, conn net.Conn) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return &protocol.HandshakeError{Err: err}
		}
	}
	if err := protocol.Handshake(conn); err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		return &protocol.HandshakeError{Err: err}
	}

	c.conn = conn
	c.dec = protocol.NewDecoder(newNonblockingReader(conn))

	for _, name := range c.tracks.Names() {
		if err := c.send(protocol.GetTrack{Name: name}); err != nil {
			return err
		}
	}
	c.log.WithFields(logrus.Fields{
		"remote": conn.RemoteAddr().String(),
		"tracks": c.tracks.Len(),
	}).Debug("handshake complete")
	return nil
}

// Track returns the named track, asking the tracker for it the first time the name is seen.
// The track is registered locally before the request goes out, so its index matches the
// order of GET_TRACK requests even when the write fails.
func (c *Client) Track(name string) (*track.Track, error) {
	if t, ok := c.tracks.Get(name); ok {
		return t, nil
	}

	frame, err := protocol.Encode(c.buf[:0], protocol.GetTrack{Name: name})
	if err != nil {
		return nil, err
	}
	t, _, _ := c.tracks.GetOrCreate(name)
	if err := c.write(frame); err != nil {
		return t, err
	}
	return t, nil
}

// LookupTrack returns the named track without contacting the tracker.
func (c *Client) LookupTrack(name string) (*track.Track, bool) {
	return c.tracks.Get(name)
}

// Tracks exposes the client's track list. Callers must not mutate it while the client is in use.
func (c *Client) Tracks() *track.Tracks {
	return c.tracks
}

// SetRow tells the tracker to move its cursor to row.
func (c *Client) SetRow(row uint32) error {
	return c.send(protocol.SetRow{Row: row})
}

// PollEvent processes buffered commands until one is meant for the application or the
// socket has nothing more to give. Key edits are applied to the tracks and never returned.
// ok is false when no event is pending. A non-nil error means the connection is gone.
func (c *Client) PollEvent() (Event, bool, error) {
	for {
		cmd, err := c.dec.Next()
		if errors.Is(err, protocol.ErrWouldBlock) {
			return Event{}, false, nil
		}
		if err != nil {
			return Event{}, false, &StreamError{Op: "read", Err: err}
		}

		switch cmd := cmd.(type) {
		case protocol.SetKey:
			t, ok := c.tracks.At(int(cmd.Track))
			if !ok {
				c.log.WithFields(logrus.Fields{"index": cmd.Track, "row": cmd.Key.Row}).Warn("SET_KEY for unknown track index")
				continue
			}
			t.SetKey(cmd.Key)
		case protocol.DeleteKey:
			t, ok := c.tracks.At(int(cmd.Track))
			if !ok {
				c.log.WithFields(logrus.Fields{"index": cmd.Track, "row": cmd.Row}).Warn("DELETE_KEY for unknown track index")
				continue
			}
			t.DeleteKey(cmd.Row)
		case protocol.SetRow:
			return Event{Kind: EventSetRow, Row: cmd.Row}, true, nil
		case protocol.Pause:
			return Event{Kind: EventPause, Paused: cmd.Paused}, true, nil
		case protocol.SaveTracks:
			return Event{Kind: EventSaveTracks}, true, nil
		default:
			c.log.WithField("opcode", cmd.Opcode().String()).Warn("skipping unknown command from tracker")
		}
	}
}

// Close drops the connection. Buffered partial frames are discarded.
func (c *Client) Close() error {
	c.dec.Reset()
	return c.conn.Close()
}

func (c *Client) send(cmd protocol.Command) error {
	frame, err := protocol.Encode(c.buf[:0], cmd)
	if err != nil {
		return err
	}
	return c.write(frame)
}

func (c *Client) write(frame []byte) error {
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return &StreamError{Op: "write", Err: err}
		}
	}
	if _, err := c.conn.Write(frame); err != nil {
		return &StreamError{Op: "write", Err: err}
	}
	return nil
}
