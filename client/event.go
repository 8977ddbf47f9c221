package client

import "fmt"

// EventKind tells which tracker command produced an Event.
type EventKind int

const (
	EventSetRow EventKind = iota + 1
	EventPause
	EventSaveTracks
)

// Event is a tracker command addressed to the application rather than to the track store.
type Event struct {
	Kind   EventKind
	Row    uint32 // EventSetRow
	Paused bool   // EventPause
}

func (e Event) String() string {
	switch e.Kind {
	case EventSetRow:
		return fmt.Sprintf("SetRow(%d)", e.Row)
	case EventPause:
		return fmt.Sprintf("Pause(%t)", e.Paused)
	case EventSaveTracks:
		return "SaveTracks"
	default:
		return "None"
	}
}
