package obd2

import (
	"log"

	"github.com/cypoid/vi-firmware/pkg/config"
	"github.com/cypoid/vi-firmware/pkg/diag"
)

// checkIgnitionStatus consumes a decoded response for either watched pid. A
// non-zero engine speed or vehicle speed is proof of bus activity and resets
// the activity timer; it doesn't matter whether the response came from a
// dedicated probe or a regular recurring poll. Other pids are ignored.
func (o *Monitor) checkIgnitionStatus(m *diag.Manager, req *diag.Request, resp *diag.Response) {
	match := false
	switch resp.PID {
	case EngineSpeedPID:
		o.engineStarted = resp.Value != 0
		match = o.engineStarted
	case VehicleSpeedPID:
		o.vehicleInMotion = resp.Value != 0
		match = o.vehicleInMotion
	}
	if match {
		o.ignitionTimer.Tick()
	}
}

// requestIgnitionStatus sends one-shot probes for engine speed and vehicle
// speed on the functional broadcast id. The activity timer is reset whether
// or not anything ever answers: it measures time since we last had reason to
// believe someone might, which is what buys the single retry period before
// giving up.
func (o *Monitor) requestIgnitionStatus(m *diag.Manager) {
	if m.Bus() == nil {
		return
	}
	if o.cfg.PowerManagement != config.PowerIgnitionCheck && !o.cfg.RecurringOBD2Requests {
		return
	}
	req := diag.Request{
		ArbitrationID: diag.FunctionalBroadcastID,
		Mode:          0x01,
		HasPID:        true,
		PID:           EngineSpeedPID,
	}
	if err := m.AddRequest(m.Bus(), req, "engine_speed", o.checkIgnitionStatus); err != nil {
		log.Printf("ignition probe: %v", err)
	}
	req.PID = VehicleSpeedPID
	if err := m.AddRequest(m.Bus(), req, "vehicle_speed", o.checkIgnitionStatus); err != nil {
		log.Printf("ignition probe: %v", err)
	}
	o.ignitionTimer.Tick()
}
