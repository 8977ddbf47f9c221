package session

import (
	"context"
	"errors"
	"math"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robmorgan/halosync/interpolation"
	"github.com/robmorgan/halosync/protocol"
	"github.com/robmorgan/halosync/rhythm"
	"github.com/robmorgan/halosync/track"
	"github.com/robmorgan/halosync/trackertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"
)

func testConfig(addr string) Config {
	cfg := DefaultConfig()
	cfg.Address = addr
	return cfg
}

func newConnected(t *testing.T, cfg Config, opts ...Option) (*Session, *trackertest.Server, *trackertest.Conn, *testingclock.FakeClock) {
	t.Helper()
	srv := trackertest.NewServer(t)
	clk := testingclock.NewFakeClock(time.Unix(1000, 0))
	cfg.Address = srv.Addr()

	s, err := New(cfg, append([]Option{WithClock(clk)}, opts...)...)
	require.NoError(t, err)
	require.True(t, s.Connected())
	t.Cleanup(func() { s.Close() })
	return s, srv, srv.Accept(), clk
}

// pollFor polls until an event arrives or cond holds.
func pollFor(t *testing.T, s *Session, cond func() bool) (Event, bool) {
	t.Helper()
	deadline := time.Now().Add(trackertest.Timeout)
	for time.Now().Before(deadline) {
		if ev, ok := s.PollEvent(); ok {
			return ev, true
		}
		if cond != nil && cond() {
			return Event{}, false
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("nothing happened before timeout")
	return Event{}, false
}

func TestValueFollowsTrackerKeys(t *testing.T) {
	t.Parallel()

	s, _, conn, _ := newConnected(t, DefaultConfig())

	assert.Equal(t, float32(0), s.Value("test"))
	assert.Equal(t, protocol.GetTrack{Name: "test"}, conn.NextCommand(t))

	conn.Send(t,
		protocol.SetKey{Track: 0, Key: track.NewKey(0, 1, interpolation.Linear)},
		protocol.SetKey{Track: 0, Key: track.NewKey(8, 3, interpolation.Step)},
	)
	test, ok := s.Tracks().Get("test")
	require.True(t, ok)
	pollFor(t, s, func() bool { return test.Len() == 2 })

	s.SetTime(250 * time.Millisecond) // row 4 at 120 bpm
	assert.InDelta(t, 4.0, s.Row(), 1e-9)
	assert.InDelta(t, 2.0, s.Value("test"), 1e-6)
	assert.Equal(t, protocol.SetRow{Row: 4}, conn.NextCommand(t))
	conn.NoCommand(t, 20*time.Millisecond)
}

func TestSetTimeSuppressesRedundantRows(t *testing.T) {
	t.Parallel()

	s, _, conn, _ := newConnected(t, DefaultConfig())

	s.SetTime(0)
	s.SetTime(10 * time.Millisecond)
	s.SetTime(50 * time.Millisecond)
	s.SetTime(70 * time.Millisecond)
	s.SetTime(80 * time.Millisecond)
	s.SetTime(-time.Second)

	assert.Equal(t, protocol.SetRow{Row: 0}, conn.NextCommand(t))
	assert.Equal(t, protocol.SetRow{Row: 1}, conn.NextCommand(t))
	assert.Equal(t, protocol.SetRow{Row: 0}, conn.NextCommand(t))
	conn.NoCommand(t, 50*time.Millisecond)
}

func TestTrackerEventsBecomeSessionEvents(t *testing.T) {
	t.Parallel()

	var saved *track.Tracks
	s, _, conn, _ := newConnected(t, DefaultConfig(), WithSaver(func(tracks *track.Tracks) error {
		saved = tracks
		return nil
	}))

	conn.Send(t, protocol.SetRow{Row: 32}, protocol.Pause{Paused: true}, protocol.SaveTracks{})

	ev, ok := pollFor(t, s, nil)
	require.True(t, ok)
	assert.Equal(t, Event{Kind: EventSeek, Time: 2 * time.Second}, ev)
	ev, _ = pollFor(t, s, nil)
	assert.Equal(t, Event{Kind: EventPause, Paused: true}, ev)
	ev, _ = pollFor(t, s, nil)
	assert.Equal(t, Event{Kind: EventSaveTracks}, ev)
	assert.Same(t, s.Tracks(), saved)

	// following the tracker's row doesn't echo it back
	s.SetTime(2 * time.Second)
	conn.NoCommand(t, 50*time.Millisecond)
	s.SetTime(2*time.Second + 70*time.Millisecond)
	assert.Equal(t, protocol.SetRow{Row: 33}, conn.NextCommand(t))
}

func TestSaverErrorStillSurfacesEvent(t *testing.T) {
	t.Parallel()

	s, _, conn, _ := newConnected(t, DefaultConfig(), WithSaver(func(*track.Tracks) error {
		return errors.New("disk full")
	}))
	conn.Send(t, protocol.SaveTracks{})

	ev, _ := pollFor(t, s, nil)
	assert.Equal(t, EventSaveTracks, ev.Kind)
	assert.True(t, s.Connected())
}

func TestReconnectCooldown(t *testing.T) {
	t.Parallel()

	var attempts int32
	refuse := func(ctx context.Context, network, address string) (net.Conn, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, errors.New("connection refused")
	}
	clk := testingclock.NewFakeClock(time.Unix(1000, 0))

	s, err := New(testConfig("tracker:1338"), WithClock(clk), WithDialer(refuse))
	require.NoError(t, err)
	assert.False(t, s.Connected())
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))

	for i := 0; i < 5; i++ {
		ev, ok := s.PollEvent()
		require.True(t, ok)
		assert.Equal(t, EventNotConnected, ev.Kind)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))

	clk.Step(999 * time.Millisecond)
	s.PollEvent()
	assert.EqualValues(t, 1, atomic.LoadInt32(&attempts))

	clk.Step(time.Millisecond)
	s.PollEvent()
	s.PollEvent()
	assert.EqualValues(t, 2, atomic.LoadInt32(&attempts))

	// nothing to send to, nothing to read
	s.SetTime(time.Second)
	assert.Equal(t, float32(0), s.Value("anything"))
	tr, err := s.Track("anything")
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Nil(t, tr)
	require.NoError(t, s.Close())
}

func TestReconnectClearsTracks(t *testing.T) {
	t.Parallel()

	s, srv, conn, clk := newConnected(t, DefaultConfig())

	s.Value("a")
	assert.Equal(t, protocol.GetTrack{Name: "a"}, conn.NextCommand(t))
	conn.Send(t, protocol.SetKey{Track: 0, Key: track.NewKey(0, 5, interpolation.Step)})
	a, _ := s.Tracks().Get("a")
	pollFor(t, s, func() bool { return a.Len() == 1 })

	conn.Close()
	ev, ok := pollFor(t, s, nil)
	require.True(t, ok)
	assert.Equal(t, EventNotConnected, ev.Kind)
	assert.False(t, s.Connected())

	// retained while the tracker is away
	assert.Equal(t, float32(5), s.Value("a"))

	clk.Step(time.Second)
	_, ok = s.PollEvent()
	assert.False(t, ok)
	require.True(t, s.Connected())
	conn = srv.Accept()

	assert.Zero(t, s.Tracks().Len())
	assert.Equal(t, float32(0), s.Value("b"))
	assert.Equal(t, protocol.GetTrack{Name: "b"}, conn.NextCommand(t))
	conn.NoCommand(t, 20*time.Millisecond)
}

func TestReconnectRetainsTracks(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.ClearTracksOnReconnect = false
	s, srv, conn, clk := newConnected(t, cfg)

	s.Value("a")
	s.Value("b")
	assert.Equal(t, protocol.GetTrack{Name: "a"}, conn.NextCommand(t))
	assert.Equal(t, protocol.GetTrack{Name: "b"}, conn.NextCommand(t))
	conn.Send(t, protocol.SetKey{Track: 1, Key: track.NewKey(0, 7, interpolation.Step)})
	b, _ := s.Tracks().Get("b")
	pollFor(t, s, func() bool { return b.Len() == 1 })

	conn.Close()
	pollFor(t, s, nil)
	clk.Step(time.Second)
	s.PollEvent()
	require.True(t, s.Connected())
	conn = srv.Accept()

	assert.Equal(t, protocol.GetTrack{Name: "a"}, conn.NextCommand(t))
	assert.Equal(t, protocol.GetTrack{Name: "b"}, conn.NextCommand(t))
	assert.Equal(t, float32(7), s.Value("b"))

	conn.Send(t, protocol.SetKey{Track: 1, Key: track.NewKey(0, 9, interpolation.Step)})
	pollFor(t, s, func() bool { return s.Value("b") == 9 })
}

func TestConfiguredTracksRequestedOnConnect(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Tracks = []string{"light:red", "light:green"}
	_, _, conn, _ := newConnected(t, cfg)

	assert.Equal(t, protocol.GetTrack{Name: "light:red"}, conn.NextCommand(t))
	assert.Equal(t, protocol.GetTrack{Name: "light:green"}, conn.NextCommand(t))
}

func TestSeededTracksSurviveFirstConnect(t *testing.T) {
	t.Parallel()

	seed := track.NewTracks(track.New("intro"))
	intro, _ := seed.Get("intro")
	intro.SetKey(track.NewKey(0, 3, interpolation.Step))

	s, _, conn, _ := newConnected(t, DefaultConfig(), WithTracks(seed))
	assert.Equal(t, protocol.GetTrack{Name: "intro"}, conn.NextCommand(t))
	assert.Equal(t, float32(3), s.Value("intro"))
}

func TestConnectRetriesUntilTrackerIsUp(t *testing.T) {
	t.Parallel()

	srv := trackertest.NewServer(t)
	var attempts int32
	flaky := func(ctx context.Context, network, address string) (net.Conn, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return nil, errors.New("connection refused")
		}
		var d net.Dialer
		return d.DialContext(ctx, network, srv.Addr())
	}

	cfg := testConfig("tracker:1338")
	cfg.ReconnectCooldown = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), trackertest.Timeout)
	defer cancel()

	s, err := Connect(ctx, cfg, WithDialer(flaky))
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, s.Connected())
	assert.EqualValues(t, 3, atomic.LoadInt32(&attempts))
	srv.Accept()
}

func TestConnectGivesUp(t *testing.T) {
	t.Parallel()

	refuse := func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}
	cfg := testConfig("tracker:1338")
	cfg.ReconnectCooldown = 5 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Connect(ctx, cfg, WithDialer(refuse))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGreetingMismatchLeavesSessionDisconnected(t *testing.T) {
	t.Parallel()

	srv := trackertest.NewServer(t, trackertest.WithGreeting("hello, world"))
	s, err := New(testConfig(srv.Addr()))
	require.NoError(t, err)
	assert.False(t, s.Connected())
}

func TestInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BPM = 0
	_, err := New(cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.Address = ""
	_, err = New(cfg)
	require.Error(t, err)
}

func TestWholeRow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want uint32
	}{
		{0, 0},
		{0.99, 0},
		{1, 1},
		{41.7, 41},
		{2.9999999999, 3},
		{2.9999, 2},
		{-3, 0},
		{math.NaN(), 0},
		{1e12, math.MaxUint32},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wholeRow(tt.in), "row %v", tt.in)
	}
}

func TestWholeRowRoundTripsTrackerRows(t *testing.T) {
	t.Parallel()

	for _, bpm := range []float64{60, 97.5, 120, 128, 130, 174, 999} {
		tempo := rhythm.Tempo{BPM: bpm}
		for row := uint32(0); row < 10000; row++ {
			got := wholeRow(tempo.TimeToRow(tempo.RowToTime(row)))
			if got != row {
				t.Fatalf("%v bpm: row %d came back as %d", bpm, row, got)
			}
		}
	}
}

func TestFollowingTrackerRowsAtOddTempo(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.BPM = 130
	s, _, conn, _ := newConnected(t, cfg)
	tempo := rhythm.Tempo{BPM: cfg.BPM}

	for row := uint32(1); row <= 40; row++ {
		conn.Send(t, protocol.SetRow{Row: row})
		ev, ok := pollFor(t, s, nil)
		require.True(t, ok)
		require.Equal(t, Event{Kind: EventSeek, Time: tempo.RowToTime(row)}, ev)
		s.SetTime(ev.Time)
	}
	conn.NoCommand(t, 50*time.Millisecond)

	s.SetTime(tempo.RowToTime(41))
	assert.Equal(t, protocol.SetRow{Row: 41}, conn.NextCommand(t))
}

func TestEventString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Seek(1.5s)", Event{Kind: EventSeek, Time: 1500 * time.Millisecond}.String())
	assert.Equal(t, "NotConnected", Event{Kind: EventNotConnected}.String())
}
