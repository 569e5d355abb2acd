package obd2

const (
	// EngineSpeedPID and VehicleSpeedPID are the two parameters watched for
	// ignition detection.
	EngineSpeedPID  = 0x0C
	VehicleSpeedPID = 0x0D
)

// PID describes an optional OBD-II parameter this firmware knows how to poll.
type PID struct {
	ID        uint16
	Name      string
	Frequency float64 // polls per second
}

// Registry lists every parameter polled when a vehicle reports support for
// it. The set is fixed at build time; order is irrelevant.
var Registry = []PID{
	{ID: EngineSpeedPID, Name: "engine_speed", Frequency: 5},
	{ID: VehicleSpeedPID, Name: "vehicle_speed", Frequency: 5},
	{ID: 0x04, Name: "engine_load", Frequency: 5},
	{ID: 0x33, Name: "barometric_pressure", Frequency: 1},
	{ID: 0x4C, Name: "commanded_throttle_position", Frequency: 1},
	{ID: 0x05, Name: "engine_coolant_temperature", Frequency: 1},
	{ID: 0x27, Name: "fuel_level", Frequency: 1},
	{ID: 0x0F, Name: "intake_air_temperature", Frequency: 1},
	{ID: 0x0B, Name: "intake_manifold_pressure", Frequency: 1},
	{ID: 0x1F, Name: "running_time", Frequency: 1},
	{ID: 0x11, Name: "throttle_position", Frequency: 5},
	{ID: 0x0A, Name: "fuel_pressure", Frequency: 1},
	{ID: 0x66, Name: "mass_airflow", Frequency: 5},
	{ID: 0x5A, Name: "accelerator_pedal_position", Frequency: 5},
	{ID: 0x52, Name: "ethanol_fuel_percentage", Frequency: 1},
	{ID: 0x5C, Name: "engine_oil_temperature", Frequency: 1},
	{ID: 0x63, Name: "engine_torque", Frequency: 1},
}

// Find scans the registry for a pid.
func Find(id uint16) (PID, bool) {
	for _, p := range Registry {
		if p.ID == id {
			return p, true
		}
	}
	return PID{}, false
}
