package main

import (
	"fmt"

	"github.com/nickysemenza/gola"
	"github.com/spf13/cobra"
)

var dumpUniverse int

var dmxDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print what OLA is currently outputting on a universe.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := gola.New(cfg.OLA.Address)
		if err != nil {
			return err
		}
		defer client.Close()

		x, err := client.GetDmx(dumpUniverse)
		if err != nil {
			return fmt.Errorf("GetDmx: %d: %w", dumpUniverse, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "universe %d: %v\n", dumpUniverse, x.Data)
		return nil
	},
}

func init() {
	dmxDumpCmd.Flags().IntVarP(&dumpUniverse, "universe", "u", 1, "universe to dump")
	dmxCmd.AddCommand(dmxDumpCmd)
}
