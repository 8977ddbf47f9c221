package rhythm

import (
	"math"
	"sync"
	"time"

	"k8s.io/utils/clock"
)

// Metronome is a playhead that advances with a clock and can be paused and moved.
// The tracker drives it through pause and seek events while the editor is attached.
// Originally based on https://github.com/Deep-Symmetry/electro/blob/main/src/main/java/org/deepsymmetry/electro/Metronome.java#L449
type Metronome struct {
	mu            sync.Mutex
	clock         clock.PassiveClock
	startTime     time.Time
	tempo         Tempo
	paused        bool
	pausedAt      time.Duration
	beatsPerBar   int
	barsPerPhrase int
}

// NewMetronome returns a running metronome at position zero.
func NewMetronome(clk clock.PassiveClock, bpm float64) *Metronome {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Metronome{
		clock:         clk,
		startTime:     clk.Now(),
		tempo:         Tempo{BPM: bpm},
		beatsPerBar:   4,
		barsPerPhrase: 8,
	}
}

// Tempo returns the current tempo.
func (m *Metronome) Tempo() Tempo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo
}

// SetTempo sets a new tempo for the Metronome. The start time will be adjusted so that the current beat and phase are
// unaffected by the tempo change.
func (m *Metronome) SetTempo(bpm float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	beats := m.tempo.TimeToRow(m.position()) / RowsPerBeat
	m.tempo = Tempo{BPM: bpm}
	m.setPosition(time.Duration(math.Round(beats * beatsToMilliseconds(1, bpm) * float64(time.Millisecond))))
}

// Position is the time elapsed on the playhead.
func (m *Metronome) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position()
}

// Row is the fractional tracker row under the playhead.
func (m *Metronome) Row() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tempo.TimeToRow(m.position())
}

// Seek moves the playhead without changing the paused state.
func (m *Metronome) Seek(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setPosition(d)
}

// Pause stops or resumes the playhead.
func (m *Metronome) Pause(paused bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if paused == m.paused {
		return
	}
	pos := m.position()
	m.paused = paused
	m.setPosition(pos)
}

// Paused reports whether the playhead is stopped.
func (m *Metronome) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

// Snapshot captures the playhead's musical position at this instant.
func (m *Metronome) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos := m.position()
	interval := beatsToMilliseconds(1, m.tempo.BPM)
	beat := markerNumber(pos, interval)
	bar := (beat-1)/m.beatsPerBar + 1
	return Snapshot{
		Position:    pos,
		Row:         m.tempo.TimeToRow(pos),
		Tempo:       m.tempo,
		Beat:        beat,
		Bar:         bar,
		Phrase:      (bar-1)/m.barsPerPhrase + 1,
		BeatInBar:   (beat-1)%m.beatsPerBar + 1,
		BarInPhrase: (bar-1)%m.barsPerPhrase + 1,
		BeatPhase:   markerPhase(pos, interval),
		Paused:      m.paused,
	}
}

func (m *Metronome) position() time.Duration {
	if m.paused {
		return m.pausedAt
	}
	return m.clock.Since(m.startTime)
}

func (m *Metronome) setPosition(d time.Duration) {
	if m.paused {
		m.pausedAt = d
		return
	}
	m.startTime = m.clock.Now().Add(-d)
}

// markerNumber calculates the marker number
func markerNumber(elapsed time.Duration, interval float64) int {
	return int(math.Floor(float64(elapsed.Milliseconds())/interval)) + 1
}

// markerPhase calculates the phase of a marker
func markerPhase(elapsed time.Duration, interval float64) float64 {
	ratio := float64(elapsed.Milliseconds()) / interval
	return ratio - math.Floor(ratio)
}
