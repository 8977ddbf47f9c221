package main

import (
	"io"
	"os"

	"github.com/robmorgan/halosync/logger"
	"github.com/robmorgan/halosync/monitor"
	"github.com/robmorgan/halosync/rhythm"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

var monitorLogFile string

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Show the connection, playhead and track values in the terminal.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// the dashboard owns the terminal
		var logOut io.Writer = io.Discard
		if monitorLogFile != "" {
			f, err := os.OpenFile(monitorLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			logOut = f
		}
		logger.SetOutput(logOut)
		defer logger.SetOutput(os.Stderr)

		src, err := newSource(cfg)
		if err != nil {
			return err
		}
		defer src.Close()

		fixtures, err := buildFixtures(cfg)
		if err != nil {
			return err
		}

		opts := []monitor.Option{
			monitor.WithTitle("halosync · " + cfg.Mode + " · " + cfg.Tracker.Address),
			monitor.WithFixtures(fixtures),
		}
		if len(cfg.Tracks) > 0 {
			opts = append(opts, monitor.WithTracks(cfg.Tracks...))
		}
		return monitor.Run(monitor.New(src, rhythm.NewMetronome(clock.RealClock{}, cfg.Tempo.BPM), opts...))
	},
}

func init() {
	monitorCmd.Flags().StringVar(&monitorLogFile, "log-file", "", "write logs here while the dashboard runs")
}
