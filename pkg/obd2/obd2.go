// Package obd2 decides, from CAN traffic alone, whether the vehicle is on,
// and while it is, discovers and polls the OBD-II parameters the vehicle
// supports. It runs no goroutine of its own: Loop is driven on a fixed
// cadence by the diagnostic manager and everything else happens in response
// callbacks on the manager goroutine.
package obd2

import (
	"log"

	vi "github.com/cypoid/vi-firmware"
	"github.com/cypoid/vi-firmware/pkg/config"
	"github.com/cypoid/vi-firmware/pkg/diag"
)

// one activity period per 5 seconds
const ignitionTimerFrequency = 0.2

// PublishFunc forwards a decoded telemetry value to the host pipeline.
type PublishFunc func(name string, value float64)

// Monitor owns the ignition detection state and the per-tick polling state
// machine driving it. It is not safe for concurrent use; the diagnostic
// manager guarantees Loop and all callbacks run on one goroutine.
type Monitor struct {
	cfg     *config.Config
	publish PublishFunc

	engineStarted   bool
	vehicleInMotion bool
	ignitionTimer   *diag.FrequencyClock

	ignitionWasOn          bool
	pidSupportQueried      bool
	sentFinalIgnitionCheck bool
}

func NewMonitor(cfg *config.Config, publish PublishFunc) *Monitor {
	if publish == nil {
		publish = func(string, float64) {}
	}
	return &Monitor{
		cfg:           cfg,
		publish:       publish,
		ignitionTimer: diag.NewFrequencyClock(ignitionTimerFrequency),
	}
}

// EngineStarted reports whether a non-zero engine speed has been seen.
func (o *Monitor) EngineStarted() bool {
	return o.engineStarted
}

// VehicleInMotion reports whether a non-zero vehicle speed has been seen.
func (o *Monitor) VehicleInMotion() bool {
	return o.vehicleInMotion
}

// Initialize fires the first ignition probe at startup.
func (o *Monitor) Initialize(m *diag.Manager) {
	o.requestIgnitionStatus(m)
}

// Loop is the polling state machine. It is invoked once per manager tick,
// no-ops until the manager is initialized, and never blocks.
//
// CAN traffic will eventually stop after teardown, and the device will
// suspend. If normal CAN is open, bus activity wakes it and we resume; if
// not, a watchdog restarts this process to probe again.
func (o *Monitor) Loop(m *diag.Manager, bus *vi.Client) {
	if !m.Initialized() {
		return
	}

	if o.ignitionTimer.Elapsed(false) {
		if o.sentFinalIgnitionCheck {
			// Still nothing after the retry probe, so the car is off (or
			// nothing on the bus answers OBD-II). Drop every open request so
			// the bus goes quiet and the device can suspend.
			if o.cfg.PowerManagement == config.PowerIgnitionCheck {
				log.Println("ceasing diagnostic requests as ignition went off")
				m.Reset()
			}
			o.ignitionWasOn = false
			o.pidSupportQueried = false
			o.engineStarted = false
			o.vehicleInMotion = false
		} else {
			// No ignition signal for a full period. Either neither watched
			// pid is polled recurring (which is fine) or the car stopped
			// responding. Probe once more; only a second silent period
			// concludes the vehicle is off, so shutdown takes 5+5 seconds
			// after ignition off.
			o.requestIgnitionStatus(m)
			o.sentFinalIgnitionCheck = true
		}
	} else if !o.ignitionWasOn && (o.engineStarted || o.vehicleInMotion) {
		o.ignitionWasOn = true
		o.sentFinalIgnitionCheck = false
		if o.cfg.RecurringOBD2Requests && !o.pidSupportQueried {
			log.Println("ignition is on - querying for supported OBD-II PIDs")
			o.pidSupportQueried = true
			o.requestSupportedPIDs(m, bus)
		}
	}
}
