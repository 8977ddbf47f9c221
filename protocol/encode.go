package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Encode appends the wire form of cmd to dst.
func Encode(dst []byte, cmd Command) ([]byte, error) {
	switch c := cmd.(type) {
	case SetKey:
		dst = append(dst, byte(OpSetKey))
		dst = binary.BigEndian.AppendUint32(dst, c.Track)
		dst = binary.BigEndian.AppendUint32(dst, c.Key.Row)
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(c.Key.Value))
		return append(dst, byte(c.Key.Interpolation)), nil
	case DeleteKey:
		dst = append(dst, byte(OpDeleteKey))
		dst = binary.BigEndian.AppendUint32(dst, c.Track)
		return binary.BigEndian.AppendUint32(dst, c.Row), nil
	case GetTrack:
		if err := checkNameLen(len(c.Name)); err != nil {
			return dst, err
		}
		dst = append(dst, byte(OpGetTrack))
		dst = binary.BigEndian.AppendUint32(dst, uint32(len(c.Name)))
		return append(dst, c.Name...), nil
	case SetRow:
		dst = append(dst, byte(OpSetRow))
		return binary.BigEndian.AppendUint32(dst, c.Row), nil
	case Pause:
		flag := byte(0)
		if c.Paused {
			flag = 1
		}
		return append(dst, byte(OpPause), flag), nil
	case SaveTracks:
		return append(dst, byte(OpSaveTracks)), nil
	default:
		return dst, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// WriteCommand encodes cmd and writes it to w in a single call.
func WriteCommand(w io.Writer, cmd Command) error {
	buf, err := Encode(make([]byte, 0, MaxFrameLen), cmd)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

func checkNameLen(n int) error {
	if uint64(n) > math.MaxUint32 {
		return ErrTrackNameTooLong
	}
	return nil
}
