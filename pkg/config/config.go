// Package config holds the runtime configuration of the vehicle interface.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// PowerManagement selects how the device decides it may power down.
type PowerManagement int

const (
	// PowerAlwaysOn keeps diagnostics running regardless of ignition state.
	PowerAlwaysOn PowerManagement = iota
	// PowerIgnitionCheck gates staying powered on perceived vehicle-on
	// state: when the vehicle looks off, open diagnostic requests are torn
	// down so the bus goes silent and the device can suspend.
	PowerIgnitionCheck
)

func (p PowerManagement) String() string {
	switch p {
	case PowerIgnitionCheck:
		return "obd2_ignition_check"
	default:
		return "always_on"
	}
}

func (p *PowerManagement) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "always_on", "":
		*p = PowerAlwaysOn
	case "obd2_ignition_check":
		*p = PowerIgnitionCheck
	default:
		return fmt.Errorf("unknown power_management mode %q", s)
	}
	return nil
}

func (p PowerManagement) MarshalYAML() (interface{}, error) {
	return p.String(), nil
}

type Config struct {
	// CAN side
	Adapter  string  `yaml:"adapter"`
	Port     string  `yaml:"port"`
	Baudrate int     `yaml:"baudrate"`
	CANRate  float64 `yaml:"can_rate"`

	// Power and polling behaviour
	PowerManagement       PowerManagement `yaml:"power_management"`
	RecurringOBD2Requests bool            `yaml:"recurring_obd2_requests"`

	// Host side
	ListenAddr   string `yaml:"listen_addr"`
	UARTPort     string `yaml:"uart_port"`
	UARTBaudrate int    `yaml:"uart_baudrate"`

	Debug bool `yaml:"debug"`
}

// Default returns a config with sensible defaults: simulated vehicle,
// ignition-gated power management and recurring polling on.
func Default() *Config {
	return &Config{
		Adapter:               "sim",
		Baudrate:              115200,
		CANRate:               500,
		PowerManagement:       PowerIgnitionCheck,
		RecurringOBD2Requests: true,
		ListenAddr:            ":8642",
		UARTBaudrate:          230400,
	}
}

// Load reads config from a YAML file, falling back to defaults when the file
// is absent or malformed.
func Load(path string) *Config {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("no config at %s, using defaults", path)
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("error parsing %s: %v, using defaults", path, err)
		return Default()
	}
	return cfg
}
