package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "vi",
	Short:         "OBD-II vehicle interface",
	Long:          "Bridges a CAN bus to a host application: detects ignition state, discovers supported OBD-II parameters and streams decoded telemetry.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

const (
	flagConfig  = "config"
	flagAdapter = "adapter"
	flagDebug   = "debug"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagConfig, "c", "vi.yaml", "config file")
	pf.StringP(flagAdapter, "a", "", "override configured adapter")
	pf.BoolP(flagDebug, "d", false, "debug mode")
}
