package session

import (
	"fmt"
	"time"
)

// EventKind identifies what the host application is asked to do.
type EventKind int

const (
	// EventSeek asks the host to move its time source to Event.Time.
	EventSeek EventKind = iota + 1
	// EventPause asks the host to stop or resume playback.
	EventPause
	// EventSaveTracks means the editor wants the current tracks persisted.
	EventSaveTracks
	// EventNotConnected is reported on every poll while there is no tracker.
	EventNotConnected
)

// Event is something the tracker wants the host to do.
type Event struct {
	Kind   EventKind
	Time   time.Duration
	Paused bool
}

func (e Event) String() string {
	switch e.Kind {
	case EventSeek:
		return fmt.Sprintf("Seek(%s)", e.Time)
	case EventPause:
		return fmt.Sprintf("Pause(%t)", e.Paused)
	case EventSaveTracks:
		return "SaveTracks"
	case EventNotConnected:
		return "NotConnected"
	default:
		return "None"
	}
}
