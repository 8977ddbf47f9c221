package rhythm

import (
	"fmt"
	"time"
)

// Snapshot is the metronome's timeline probed at one instant.
type Snapshot struct {
	Position time.Duration
	Row      float64
	Tempo    Tempo

	// Beat, Bar and Phrase count from 1 since position zero.
	Beat   int
	Bar    int
	Phrase int

	BeatInBar   int
	BarInPhrase int

	// BeatPhase is how far into the current beat we are, in [0, 1).
	BeatPhase float64
	Paused    bool
}

// String renders the position the way a lighting desk shows it, phrase.bar.beat.
func (s Snapshot) String() string {
	return fmt.Sprintf("%d.%d.%d", s.Phrase, s.BarInPhrase, s.BeatInBar)
}
