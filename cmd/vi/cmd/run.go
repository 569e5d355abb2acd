package cmd

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	vi "github.com/cypoid/vi-firmware"
	"github.com/cypoid/vi-firmware/pkg/config"
	"github.com/cypoid/vi-firmware/pkg/diag"
	"github.com/cypoid/vi-firmware/pkg/obd2"
	"github.com/cypoid/vi-firmware/pkg/payload"
	"github.com/cypoid/vi-firmware/pkg/stream"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the vehicle interface",
	RunE:  runVI,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runVI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfgPath, _ := cmd.Flags().GetString(flagConfig)
	cfg := config.Load(cfgPath)
	if adapterName, _ := cmd.Flags().GetString(flagAdapter); adapterName != "" {
		cfg.Adapter = adapterName
	}
	if debug, _ := cmd.Flags().GetBool(flagDebug); debug {
		cfg.Debug = true
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

	ws := stream.NewServer(cfg.ListenAddr)
	sinks := []stream.Sink{ws}
	if cfg.UARTPort != "" {
		uart, err := stream.NewUARTSink(cfg.UARTPort, cfg.UARTBaudrate)
		if err != nil {
			return err
		}
		sinks = append(sinks, uart)
	}
	pub := stream.NewPublisher(sinks...)
	defer pub.Close()

	mgr := diag.NewManager(client, decodeOBD2)
	mon := obd2.NewMonitor(cfg, func(name string, value float64) {
		if cfg.Debug {
			log.Printf("%s = %.2f", name, value)
		}
		pub.Publish(payload.New(name, value))
	})
	mgr.OnStart = mon.Initialize
	mgr.OnTick = func(m *diag.Manager) {
		mon.Loop(m, client)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ws.Run(gctx) })
	g.Go(func() error { return mgr.Run(gctx) })
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// decodeOBD2 covers the standard mode 0x01 formulas for the parameters in
// the poll registry. Unknown pids fall back to the raw first byte.
func decodeOBD2(pid uint16, data []byte) float64 {
	at := func(i int) float64 {
		if i < len(data) {
			return float64(data[i])
		}
		return 0
	}
	switch pid {
	case 0x0C: // engine speed, rpm
		return (at(0)*256 + at(1)) / 4
	case 0x04, 0x11, 0x27, 0x2C, 0x4C, 0x52, 0x5A: // percentages
		return at(0) * 100 / 255
	case 0x05, 0x0F, 0x5C: // temperatures, offset -40
		return at(0) - 40
	case 0x0A: // fuel pressure, kPa
		return at(0) * 3
	case 0x1F: // running time, seconds
		return at(0)*256 + at(1)
	case 0x33: // barometric pressure, kPa
		return at(0)
	case 0x63: // reference torque, Nm
		return at(0)*256 + at(1)
	case 0x66: // mass airflow, g/s; first byte selects the sensor
		return (at(1)*256 + at(2)) / 32
	default:
		return at(0)
	}
}
