package protocol

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/robmorgan/halosync/interpolation"
	"github.com/robmorgan/halosync/track"
)

type decoderState int

const (
	awaitingOpcode decoderState = iota
	awaitingBody
	ready
)

// Decoder turns a non-blocking byte stream from a tracker into commands.
//
// The source may return any number of bytes per Read, including none with
// ErrWouldBlock. Partial frames are kept between calls, so the decoded commands do
// not depend on how the stream was split.
type Decoder struct {
	r         io.Reader
	state     decoderState
	remaining int
	frame     [MaxFrameLen]byte
	n         int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next returns the next complete command. It returns ErrWouldBlock once the source
// has nothing more to give and the current frame is still incomplete. Any other
// error is fatal for the stream.
func (d *Decoder) Next() (Command, error) {
	for {
		switch d.state {
		case awaitingOpcode:
			if _, err := d.fill(d.frame[:1]); err != nil {
				return nil, err
			}
			d.n = 1
			length, known := serverBodyLen(Opcode(d.frame[0]))
			if !known || length == 0 {
				d.state = ready
				continue
			}
			d.remaining = length
			d.state = awaitingBody

		case awaitingBody:
			read, err := d.fill(d.frame[d.n : d.n+d.remaining])
			if err != nil {
				return nil, err
			}
			d.n += read
			d.remaining -= read
			if d.remaining == 0 {
				d.state = ready
			}

		case ready:
			cmd := parseFrame(d.frame[:d.n])
			d.Reset()
			return cmd, nil
		}
	}
}

// Buffered reports how many bytes of an incomplete frame are held.
func (d *Decoder) Buffered() int {
	if d.state == awaitingOpcode {
		return 0
	}
	return d.n
}

// Reset drops any partially accumulated frame.
func (d *Decoder) Reset() {
	d.state = awaitingOpcode
	d.remaining = 0
	d.n = 0
}

// fill reads at most len(p) bytes. A read that makes no progress is reported as ErrWouldBlock.
func (d *Decoder) fill(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		return n, nil
	}
	if err == nil || errors.Is(err, ErrWouldBlock) {
		return 0, ErrWouldBlock
	}
	return 0, err
}

func parseFrame(frame []byte) Command {
	op := Opcode(frame[0])
	body := frame[1:]
	switch op {
	case OpSetKey:
		return SetKey{
			Track: binary.BigEndian.Uint32(body[0:4]),
			Key: track.Key{
				Row:           binary.BigEndian.Uint32(body[4:8]),
				Value:         math.Float32frombits(binary.BigEndian.Uint32(body[8:12])),
				Interpolation: interpolation.FromByte(body[12]),
			},
		}
	case OpDeleteKey:
		return DeleteKey{
			Track: binary.BigEndian.Uint32(body[0:4]),
			Row:   binary.BigEndian.Uint32(body[4:8]),
		}
	case OpSetRow:
		return SetRow{Row: binary.BigEndian.Uint32(body[0:4])}
	case OpPause:
		return Pause{Paused: body[0] == 1}
	case OpSaveTracks:
		return SaveTracks{}
	default:
		return Unknown{Op: op}
	}
}
