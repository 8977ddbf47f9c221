// Package session keeps a host application in sync with a rocket tracker across connection loss.
package session

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/robmorgan/halosync/client"
	"github.com/robmorgan/halosync/logger"
	"github.com/robmorgan/halosync/protocol"
	"github.com/robmorgan/halosync/rhythm"
	"github.com/robmorgan/halosync/track"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

// ErrNotConnected is returned by Track for a name the session has never seen while no
// tracker is attached.
var ErrNotConnected = errors.New("session: not connected to a tracker")

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock used for the reconnect cooldown.
func WithClock(clk clock.Clock) Option {
	return func(s *Session) {
		s.clock = clk
	}
}

// WithDialer replaces the TCP dialer.
func WithDialer(dial client.DialFunc) Option {
	return func(s *Session) {
		s.dial = dial
	}
}

// WithLogger replaces the default component logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(s *Session) {
		s.log = entry
	}
}

// WithTracks seeds the session with tracks, e.g. restored from a snapshot. They are
// requested from the tracker on the first connect.
func WithTracks(tracks *track.Tracks) Option {
	return func(s *Session) {
		s.tracks = tracks
	}
}

// WithSaver is called with the current tracks whenever the tracker asks for a save, before
// the EventSaveTracks event is handed to the host.
func WithSaver(save func(*track.Tracks) error) Option {
	return func(s *Session) {
		s.save = save
	}
}

// Session owns the tracker connection and the tracks. It is not safe for concurrent use;
// a host with several goroutines must serialize its calls.
type Session struct {
	cfg   Config
	tempo rhythm.Tempo
	clock clock.Clock
	dial  client.DialFunc
	log   *logrus.Entry
	save  func(*track.Tracks) error

	client *client.Client
	tracks *track.Tracks
	row    float64

	rowSent     uint32
	haveRowSent bool

	lastAttempt time.Time
	everUp      bool
}

// New creates a session and makes one attempt to reach the tracker. Failing to connect is
// not an error: the session starts disconnected and retries from PollEvent.
func New(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Session{
		cfg:   cfg,
		tempo: rhythm.Tempo{BPM: cfg.BPM},
		clock: clock.RealClock{},
		log:   logger.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracks == nil {
		s.tracks = track.NewTracks()
	}

	s.connect(context.Background())
	return s, nil
}

// Connect creates a session and blocks until the tracker accepts it, retrying once per
// cooldown. It gives up when ctx is done.
func Connect(ctx context.Context, cfg Config, opts ...Option) (*Session, error) {
	s, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	for !s.Connected() {
		select {
		case <-ctx.Done():
			s.Close()
			return nil, ctx.Err()
		case <-s.clock.After(s.cfg.ReconnectCooldown):
		}
		s.connect(ctx)
	}
	return s, nil
}

// Connected reports whether a tracker is attached right now.
func (s *Session) Connected() bool {
	return s.client != nil
}

// Row is the fractional row set by the last SetTime.
func (s *Session) Row() float64 {
	return s.row
}

// Tracks returns the tracks known to the session. The collection is replaced, not
// emptied, when a reconnect clears the tracks.
func (s *Session) Tracks() *track.Tracks {
	return s.tracks
}

// SetTime converts d to a row and, if the integer row changed, moves the tracker's cursor.
func (s *Session) SetTime(d time.Duration) {
	s.row = s.tempo.TimeToRow(d)
	if s.client == nil {
		return
	}

	row := wholeRow(s.row)
	if s.haveRowSent && row == s.rowSent {
		return
	}
	if err := s.client.SetRow(row); err != nil {
		s.drop(err)
		return
	}
	s.rowSent = row
	s.haveRowSent = true
}

// Track returns the named track, requesting it from the tracker if it is new.
// While disconnected only tracks already known are returned; any other name gives
// ErrNotConnected.
func (s *Session) Track(name string) (*track.Track, error) {
	if s.client == nil {
		if t, ok := s.tracks.Get(name); ok {
			return t, nil
		}
		return nil, ErrNotConnected
	}

	t, err := s.client.Track(name)
	if err != nil && !errors.Is(err, protocol.ErrTrackNameTooLong) {
		s.drop(err)
		return t, nil
	}
	return t, err
}

// Value returns the named track at the current row. Unknown tracks, and every track while
// disconnected with nothing retained, read as 0.
func (s *Session) Value(name string) float32 {
	t, err := s.Track(name)
	if errors.Is(err, ErrNotConnected) {
		return 0
	}
	if err != nil {
		s.log.WithError(err).WithField("track", name).Error("cannot request track")
		return 0
	}
	return t.Value(float32(s.row))
}

// PollEvent returns the next event for the host, or false when nothing is pending.
// While disconnected it reports EventNotConnected, trying to reconnect at most once per
// cooldown. It never blocks longer than a connection attempt.
func (s *Session) PollEvent() (Event, bool) {
	for {
		if s.client == nil {
			if s.clock.Since(s.lastAttempt) < s.cfg.ReconnectCooldown || !s.connect(context.Background()) {
				return Event{Kind: EventNotConnected}, true
			}
		}

		ev, ok, err := s.client.PollEvent()
		if err != nil {
			s.drop(err)
			continue
		}
		if !ok {
			return Event{}, false
		}

		switch ev.Kind {
		case client.EventSetRow:
			// the tracker already knows this row, don't send it back
			s.rowSent = ev.Row
			s.haveRowSent = true
			return Event{Kind: EventSeek, Time: s.tempo.RowToTime(ev.Row)}, true
		case client.EventPause:
			return Event{Kind: EventPause, Paused: ev.Paused}, true
		case client.EventSaveTracks:
			if s.save != nil {
				if err := s.save(s.tracks); err != nil {
					s.log.WithError(err).Error("saving tracks failed")
				}
			}
			return Event{Kind: EventSaveTracks}, true
		}
	}
}

// Close drops the connection. The tracks stay readable.
func (s *Session) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *Session) connect(ctx context.Context) bool {
	s.lastAttempt = s.clock.Now()

	tracks := s.tracks
	if s.everUp && s.cfg.ClearTracksOnReconnect {
		tracks = track.NewTracks()
	}

	if s.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.DialTimeout)
		defer cancel()
	}

	opts := []client.Option{
		client.WithWriteTimeout(s.cfg.WriteTimeout),
		client.WithLogger(s.log.WithField("address", s.cfg.Address)),
	}
	if s.dial != nil {
		opts = append(opts, client.WithDialer(s.dial))
	}

	c, err := client.Dial(ctx, s.cfg.Address, tracks, opts...)
	if err != nil {
		s.logConnectError(err)
		return false
	}

	s.client = c
	s.tracks = tracks
	s.haveRowSent = false
	s.everUp = true
	s.log.WithFields(logrus.Fields{"address": s.cfg.Address, "tracks": tracks.Len()}).Info("connected to tracker")

	for _, name := range s.cfg.Tracks {
		if _, err := s.client.Track(name); err != nil {
			if errors.Is(err, protocol.ErrTrackNameTooLong) {
				s.log.WithField("track", name).Error("track name too long, skipping")
				continue
			}
			s.drop(err)
			return false
		}
	}
	return true
}

func (s *Session) logConnectError(err error) {
	var mismatch *protocol.GreetingMismatchError
	if errors.As(err, &mismatch) {
		s.log.WithError(err).WithField("address", s.cfg.Address).Error("peer is not a rocket tracker")
		return
	}
	s.log.WithError(err).WithField("address", s.cfg.Address).Debug("tracker not reachable")
}

func (s *Session) drop(err error) {
	s.log.WithError(err).Warn("lost connection to tracker")
	if s.client != nil {
		s.client.Close()
		s.client = nil
	}
}

// rowSnap is how close to a whole row a fractional row must be to count as that row.
// RowToTime rounds to the nanosecond, so converting back can land a hair below the row.
const rowSnap = 1e-6

// wholeRow truncates a fractional row for the wire, clamping to the u32 range.
func wholeRow(row float64) uint32 {
	if n := math.Round(row); math.Abs(row-n) < rowSnap {
		row = n
	}
	switch {
	case math.IsNaN(row) || row <= 0:
		return 0
	case row >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(row)
}
