package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	def := Default()
	if cfg.Adapter != def.Adapter || cfg.PowerManagement != def.PowerManagement {
		t.Fatalf("got %+v, want defaults %+v", cfg, def)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vi.yaml")
	data := []byte(`
adapter: sim
power_management: always_on
recurring_obd2_requests: false
listen_addr: ":9000"
uart_port: /dev/ttyUSB0
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.PowerManagement != PowerAlwaysOn {
		t.Errorf("power management %v, want always_on", cfg.PowerManagement)
	}
	if cfg.RecurringOBD2Requests {
		t.Error("recurring requests still enabled")
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("listen addr %q", cfg.ListenAddr)
	}
	if cfg.UARTPort != "/dev/ttyUSB0" {
		t.Errorf("uart port %q", cfg.UARTPort)
	}
	// untouched keys keep their defaults
	if cfg.UARTBaudrate != Default().UARTBaudrate {
		t.Errorf("uart baudrate %d, want default", cfg.UARTBaudrate)
	}
}

func TestLoadRejectsUnknownPowerMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vi.yaml")
	if err := os.WriteFile(path, []byte("power_management: solar\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(path)
	if cfg.PowerManagement != Default().PowerManagement {
		t.Fatalf("bad mode produced %v instead of the default", cfg.PowerManagement)
	}
}

func TestPowerManagementString(t *testing.T) {
	if got := PowerIgnitionCheck.String(); got != "obd2_ignition_check" {
		t.Errorf("got %q", got)
	}
	if got := PowerAlwaysOn.String(); got != "always_on" {
		t.Errorf("got %q", got)
	}
}
