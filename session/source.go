package session

import (
	"time"

	"github.com/robmorgan/halosync/track"
)

// Source supplies track values to the host application, once per frame:
//
//	for {
//		ev, ok := src.PollEvent()
//		if !ok || ev.Kind == session.EventNotConnected {
//			break
//		}
//		// seek, pause or save
//	}
//	src.SetTime(music.Position())
//	brightness := src.Value("light:brightness")
//
// A live Session and a player.Player both implement it, so the host picks one at startup
// and renders the same way either way.
type Source interface {
	// SetTime moves the source to the host's playback position.
	SetTime(d time.Duration)

	// Value is the named track interpolated at the current position. It never fails.
	Value(name string) float32

	// PollEvent returns the next pending event without blocking.
	PollEvent() (Event, bool)

	// Tracks exposes the tracks currently known to the source.
	Tracks() *track.Tracks

	Close() error
}

var _ Source = (*Session)(nil)
