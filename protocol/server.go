package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxTrackNameLen bounds what a tracker is willing to allocate for a GET_TRACK name.
const maxTrackNameLen = 64 * 1024

// ReadClientCommand reads one client->tracker frame from a blocking reader.
// Clients only send GET_TRACK and SET_ROW.
func ReadClientCommand(r io.Reader) (Command, error) {
	var op [1]byte
	if _, err := io.ReadFull(r, op[:]); err != nil {
		return nil, err
	}

	switch Opcode(op[0]) {
	case OpGetTrack:
		var hdr [GetTrackLen]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, err
		}
		n := binary.BigEndian.Uint32(hdr[:])
		if n > maxTrackNameLen {
			return nil, fmt.Errorf("protocol: track name of %d bytes exceeds limit", n)
		}
		name := make([]byte, n)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, err
		}
		return GetTrack{Name: string(name)}, nil
	case OpSetRow:
		var body [SetRowLen]byte
		if _, err := io.ReadFull(r, body[:]); err != nil {
			return nil, err
		}
		return SetRow{Row: binary.BigEndian.Uint32(body[:])}, nil
	default:
		return nil, fmt.Errorf("%w: opcode %d from client", ErrUnknownCommand, op[0])
	}
}
