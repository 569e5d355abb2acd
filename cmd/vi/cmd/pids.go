package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cypoid/vi-firmware/pkg/obd2"
)

var pidsCmd = &cobra.Command{
	Use:   "pids",
	Short: "List the OBD-II parameters polled when a vehicle reports support",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range obd2.Registry {
			fmt.Printf("0x%02X  %-32s %g Hz\n", p.ID, p.Name, p.Frequency)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pidsCmd)
}
