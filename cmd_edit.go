package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/robmorgan/halosync/rhythm"
	"github.com/robmorgan/halosync/session"
	"github.com/robmorgan/halosync/snapshot"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var (
	editRestore bool
	editFrame   time.Duration
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Follow a tracker, printing its events and the configured tracks.",
	Long: `edit waits for a tracker, then follows its cursor and pause state with a local
playhead. SAVE_TRACKS from the editor writes the tracks file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runEdit(ctx, cmd)
	},
}

func init() {
	editCmd.Flags().BoolVar(&editRestore, "restore", false, "seed the session with the saved tracks file")
	editCmd.Flags().DurationVar(&editFrame, "frame", 32*time.Millisecond, "frame interval")
}

func runEdit(ctx context.Context, cmd *cobra.Command) error {
	opts := []session.Option{session.WithSaver(saveTo(cfg.TracksFile))}
	if editRestore {
		tracks, err := snapshot.LoadFile(cfg.TracksFile)
		if err != nil {
			return err
		}
		opts = append(opts, session.WithTracks(tracks))
	}

	log.WithField("address", cfg.Tracker.Address).Info("waiting for tracker")
	s, err := session.Connect(ctx, cfg.SessionConfig(), opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	out := cmd.OutOrStdout()
	met := rhythm.NewMetronome(clock.RealClock{}, cfg.Tempo.BPM)
	met.Pause(true)

	ticker := time.NewTicker(editFrame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		drainEvents(s, func(ev session.Event) {
			switch ev.Kind {
			case session.EventSeek:
				met.Seek(ev.Time)
			case session.EventPause:
				met.Pause(ev.Paused)
				printValues(out, s, cfg.Tracks)
			}
			fmt.Fprintln(out, ev)
		})
		s.SetTime(met.Position())
	}
}

func printValues(w io.Writer, src session.Source, names []string) {
	if len(names) == 0 {
		names = src.Tracks().Names()
	}
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %v\n", name, src.Value(name))
	}
}
