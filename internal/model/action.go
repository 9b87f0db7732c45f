package model

// BatteryMode is a human-friendly operating mode for a simulation step.
// Keep these values stable; they are intended for CSV output.
type BatteryMode string

const (
	ModeCharging    BatteryMode = "CHARGING"
	ModeIdle        BatteryMode = "IDLE"
	ModeDischarging BatteryMode = "DISCHARGING"
)

// ModeFromPowerKW maps battery power to a mode.
// Convention: positive kW = charging, negative kW = discharging.
func ModeFromPowerKW(powerKW float64) BatteryMode {
	switch {
	case powerKW > 0:
		return ModeCharging
	case powerKW < 0:
		return ModeDischarging
	default:
		return ModeIdle
	}
}
