package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/robmorgan/halosync/player"
	"github.com/spf13/cobra"
)

var (
	playFrame    time.Duration
	playDuration time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play [tracks file]",
	Short: "Print track values from a saved tracks file.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if playFrame <= 0 {
			return fmt.Errorf("--frame must be positive")
		}
		path := cfg.TracksFile
		if len(args) == 1 {
			path = args[0]
		}
		p, err := player.Load(path, cfg.Tempo.BPM)
		if err != nil {
			return err
		}
		defer p.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runPlay(ctx, cmd, p)
	},
}

func init() {
	playCmd.Flags().DurationVar(&playFrame, "frame", 32*time.Millisecond, "time between printed frames")
	playCmd.Flags().DurationVar(&playDuration, "duration", 0, "stop after this much show time (0 plays forever)")
}

// runPlay prints every track at each frame of show time. It doesn't sleep when a duration
// is given, so a file can be dumped quickly.
func runPlay(ctx context.Context, cmd *cobra.Command, p *player.Player) error {
	out := cmd.OutOrStdout()
	var ticker *time.Ticker
	if playDuration == 0 {
		ticker = time.NewTicker(playFrame)
		defer ticker.Stop()
	}

	for at := time.Duration(0); playDuration == 0 || at <= playDuration; at += playFrame {
		p.SetTime(at)
		fmt.Fprintf(out, "row %.2f\n", p.Row())
		printValues(out, p, cfg.Tracks)

		if ticker == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}
