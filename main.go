package main

import (
	"fmt"
	"os"

	"github.com/robmorgan/halosync/config"
	"github.com/robmorgan/halosync/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded before any subcommand runs
	cfg config.HaloConfig

	log = logger.WithComponent("halosync")
)

var rootCmd = &cobra.Command{
	Use:   "halosync",
	Short: "Drive lights and visuals from a rocket sync tracker.",
	Long: `halosync connects to a rocket tracker (GNU Rocket, RocketEditor, ...) and plays
its tracks in time with the show, or plays back tracks saved from an earlier session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return logger.SetLevel(cfg.LogLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(editCmd, playCmd, monitorCmd, dmxCmd)
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
