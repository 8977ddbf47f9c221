package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"

	"github.com/nickysemenza/gola"
	"github.com/robmorgan/halosync/fixture"
	"github.com/robmorgan/halosync/rhythm"
	"github.com/robmorgan/halosync/session"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var dmxCmd = &cobra.Command{
	Use:   "dmx",
	Short: "Drive the patched fixtures through OLA from the tracks.",
	Long: `dmx renders every patched fixture from its tracks ("<fixture>:<channel>", e.g.
"left_middle_par:red") and sends the universes to an OLA daemon.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		fixtures, err := buildFixtures(cfg)
		if err != nil {
			return err
		}
		src, err := newSource(cfg)
		if err != nil {
			return err
		}
		defer src.Close()

		log.WithField("address", cfg.OLA.Address).Info("connecting to OLA")
		client, err := gola.New(cfg.OLA.Address)
		if err != nil {
			return err
		}

		met := rhythm.NewMetronome(clock.RealClock{}, cfg.Tempo.BPM)
		var wg sync.WaitGroup
		wg.Add(1)
		err = fixture.SendDMXWorker(ctx, client, cfg.FrameInterval(), renderFrame(src, met, fixtures), &wg)
		wg.Wait()
		return dmxWorkerResult(err)
	},
}

// dmxWorkerResult treats an interrupted worker as a clean exit.
func dmxWorkerResult(err error) error {
	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}
	return err
}

// renderFrame advances the show by one frame and writes the fixtures into the DMX state.
func renderFrame(src session.Source, met *rhythm.Metronome, fixtures *fixture.Group) fixture.FrameFunc {
	return func(state *fixture.DMXState) error {
		drainEvents(src, func(ev session.Event) {
			switch ev.Kind {
			case session.EventSeek:
				met.Seek(ev.Time)
			case session.EventPause:
				met.Pause(ev.Paused)
			}
		})
		src.SetTime(met.Position())
		fixtures.Update(src)
		return fixtures.Render(state)
	}
}
