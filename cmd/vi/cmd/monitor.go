package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	vi "github.com/cypoid/vi-firmware"
	"github.com/cypoid/vi-firmware/pkg/config"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Print raw CAN traffic seen by the adapter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfgPath, _ := cmd.Flags().GetString(flagConfig)
		cfg := config.Load(cfgPath)
		if adapterName, _ := cmd.Flags().GetString(flagAdapter); adapterName != "" {
			cfg.Adapter = adapterName
		}

		adapter, err := vi.NewAdapter(cfg.Adapter, &vi.AdapterConfig{
			Debug:        cfg.Debug,
			Port:         cfg.Port,
			PortBaudrate: cfg.Baudrate,
			CANRate:      cfg.CANRate,
		})
		if err != nil {
			return err
		}
		client, err := vi.New(ctx, adapter)
		if err != nil {
			return err
		}
		defer client.Close()

		sub := client.Subscribe(ctx)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case frame, ok := <-sub.Chan():
				if !ok {
					return nil
				}
				fmt.Println(frame.ColorString())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
