// Package player plays back saved tracks without a tracker attached.
package player

import (
	"time"

	"github.com/robmorgan/halosync/logger"
	"github.com/robmorgan/halosync/rhythm"
	"github.com/robmorgan/halosync/session"
	"github.com/robmorgan/halosync/snapshot"
	"github.com/robmorgan/halosync/track"
	"github.com/sirupsen/logrus"
)

// Player is a read-only session.Source over a fixed set of tracks.
type Player struct {
	tracks *track.Tracks
	tempo  rhythm.Tempo
	row    float64
	log    *logrus.Entry
	warned map[string]struct{}
}

var _ session.Source = (*Player)(nil)

// New plays tracks at bpm.
func New(tracks *track.Tracks, bpm float64) *Player {
	if tracks == nil {
		tracks = track.NewTracks()
	}
	return &Player{
		tracks: tracks,
		tempo:  rhythm.Tempo{BPM: bpm},
		log:    logger.WithComponent("player"),
		warned: map[string]struct{}{},
	}
}

// Load plays the tracks saved at path.
func Load(path string, bpm float64) (*Player, error) {
	tracks, err := snapshot.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(tracks, bpm), nil
}

func (p *Player) SetTime(d time.Duration) {
	p.row = p.tempo.TimeToRow(d)
}

// Row is the fractional row set by the last SetTime.
func (p *Player) Row() float64 {
	return p.row
}

// Value returns 0 for tracks that were never saved and logs that once per name.
func (p *Player) Value(name string) float32 {
	t, ok := p.tracks.Get(name)
	if !ok {
		if _, seen := p.warned[name]; !seen {
			p.warned[name] = struct{}{}
			p.log.WithField("track", name).Warn("track not found in saved tracks, using 0")
		}
		return 0
	}
	return t.Value(float32(p.row))
}

// PollEvent never has anything to report.
func (p *Player) PollEvent() (session.Event, bool) {
	return session.Event{}, false
}

func (p *Player) Tracks() *track.Tracks {
	return p.tracks
}

func (p *Player) Close() error {
	return nil
}
