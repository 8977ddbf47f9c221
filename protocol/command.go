package protocol

import (
	"fmt"

	"github.com/robmorgan/halosync/track"
)

// Opcode is the first byte of every frame.
type Opcode byte

const (
	OpSetKey     Opcode = 0
	OpDeleteKey  Opcode = 1
	OpGetTrack   Opcode = 2
	OpSetRow     Opcode = 3
	OpPause      Opcode = 4
	OpSaveTracks Opcode = 5
)

// Body lengths, not counting the opcode byte.
const (
	SetKeyLen     = 4 + 4 + 4 + 1
	DeleteKeyLen  = 4 + 4
	GetTrackLen   = 4 // name bytes follow
	SetRowLen     = 4
	PauseLen      = 1
	SaveTracksLen = 0

	// MaxFrameLen is the longest fixed frame a tracker can send.
	MaxFrameLen = 1 + SetKeyLen
)

func (op Opcode) String() string {
	switch op {
	case OpSetKey:
		return "SET_KEY"
	case OpDeleteKey:
		return "DELETE_KEY"
	case OpGetTrack:
		return "GET_TRACK"
	case OpSetRow:
		return "SET_ROW"
	case OpPause:
		return "PAUSE"
	case OpSaveTracks:
		return "SAVE_TRACKS"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", byte(op))
	}
}

// serverBodyLen is the fixed body length of a tracker->client frame.
func serverBodyLen(op Opcode) (int, bool) {
	switch op {
	case OpSetKey:
		return SetKeyLen, true
	case OpDeleteKey:
		return DeleteKeyLen, true
	case OpSetRow:
		return SetRowLen, true
	case OpPause:
		return PauseLen, true
	case OpSaveTracks:
		return SaveTracksLen, true
	default:
		return 0, false
	}
}

// Command is one decoded protocol message.
type Command interface {
	Opcode() Opcode
}

// SetKey inserts or replaces a key on the track with protocol index Track.
type SetKey struct {
	Track uint32
	Key   track.Key
}

// DeleteKey removes the key at Row from the track with protocol index Track.
type DeleteKey struct {
	Track uint32
	Row   uint32
}

// GetTrack asks the tracker for a track. Only clients send it.
type GetTrack struct {
	Name string
}

// SetRow moves the cursor, in either direction.
type SetRow struct {
	Row uint32
}

// Pause toggles playback on the client.
type Pause struct {
	Paused bool
}

// SaveTracks asks the client to persist its tracks.
type SaveTracks struct{}

// Unknown is a frame whose opcode we don't understand. Its body length is unknown,
// so only the opcode byte was consumed.
type Unknown struct {
	Op Opcode
}

func (SetKey) Opcode() Opcode     { return OpSetKey }
func (DeleteKey) Opcode() Opcode  { return OpDeleteKey }
func (GetTrack) Opcode() Opcode   { return OpGetTrack }
func (SetRow) Opcode() Opcode     { return OpSetRow }
func (Pause) Opcode() Opcode      { return OpPause }
func (SaveTracks) Opcode() Opcode { return OpSaveTracks }
func (u Unknown) Opcode() Opcode  { return u.Op }
