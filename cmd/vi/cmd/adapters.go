package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	vi "github.com/cypoid/vi-firmware"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "List the available CAN adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range vi.ListAdapterNames() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adaptersCmd)
}
