package main

import (
	"fmt"

	"github.com/robmorgan/halosync/config"
	"github.com/robmorgan/halosync/fixture"
	"github.com/robmorgan/halosync/player"
	"github.com/robmorgan/halosync/session"
	"github.com/robmorgan/halosync/snapshot"
	"github.com/robmorgan/halosync/track"
)

// newSource picks the live tracker or the saved tracks according to the configured mode.
func newSource(cfg config.HaloConfig) (session.Source, error) {
	switch cfg.Mode {
	case config.ModePlayback:
		return player.Load(cfg.TracksFile, cfg.Tempo.BPM)
	case config.ModeLive:
		return session.New(cfg.SessionConfig(), session.WithSaver(saveTo(cfg.TracksFile)))
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

func saveTo(path string) func(*track.Tracks) error {
	return func(tracks *track.Tracks) error {
		if err := snapshot.SaveFile(path, tracks); err != nil {
			return err
		}
		log.WithField("path", path).WithField("tracks", tracks.Len()).Info("tracks saved")
		return nil
	}
}

// buildFixtures patches the configured fixtures into one group.
func buildFixtures(cfg config.HaloConfig) (*fixture.Group, error) {
	g := fixture.NewGroup()
	for i, pf := range cfg.PatchedFixtures {
		p, ok := cfg.FixtureProfiles[pf.Profile]
		if !ok {
			return nil, fmt.Errorf("fixture %s: unknown profile %q", pf.Name, pf.Profile)
		}
		if g.HasFixture(pf.Name) {
			return nil, fmt.Errorf("fixture %s is patched twice", pf.Name)
		}
		g.AddFixture(pf.Name, fixture.NewFixture(i+1, pf.Name, pf.Universe, pf.Address, p))
	}
	return g, nil
}

// drainEvents applies pending source events to the playhead. It stops at NotConnected so
// a frame loop never spins while the tracker is away.
func drainEvents(src session.Source, onEvent func(session.Event)) {
	for {
		ev, ok := src.PollEvent()
		if !ok || ev.Kind == session.EventNotConnected {
			return
		}
		onEvent(ev)
	}
}
