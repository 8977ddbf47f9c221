package rhythm

import (
	"math"
	"time"
)

// RowsPerBeat is fixed by the rocket protocol.
const RowsPerBeat = 8

// Tempo converts between tracker rows and playback time.
type Tempo struct {
	BPM float64
}

// RowsPerSecond is bpm/60 beats per second times RowsPerBeat.
func (t Tempo) RowsPerSecond() float64 {
	return t.BPM / 60 * RowsPerBeat
}

// TimeToRow returns the fractional row reached after d. Negative durations give negative rows.
func (t Tempo) TimeToRow(d time.Duration) float64 {
	return d.Seconds() * t.RowsPerSecond()
}

// RowToTime is the inverse of TimeToRow for whole rows.
func (t Tempo) RowToTime(row uint32) time.Duration {
	if t.BPM <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(row) / t.RowsPerSecond() * float64(time.Second)))
}

// BeatInterval is how long one beat lasts.
func (t Tempo) BeatInterval() time.Duration {
	return time.Duration(math.Round(beatsToMilliseconds(1, t.BPM) * float64(time.Millisecond)))
}

// beatsToMilliseconds calculates milliseconds for given beats and tempo
func beatsToMilliseconds(beats int, tempo float64) float64 {
	return (60000.0 / tempo) * float64(beats)
}
