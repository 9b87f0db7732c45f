package simulation

import (
	"math"
	"time"

	"ems-mock/internal/model"
)

const (
	solarNameplateKW = 50.0
	baseLoadKW       = 80.0

	// Economics per kWh of solar generation.
	savingsPerKWh = 0.15
	carbonPerKWh  = 0.82
)

// HourOfDay returns the local hour as a real number (14:30 -> 14.5).
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

// unixMillis is the float epoch-millisecond value the oscillation terms use.
func unixMillis(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Millisecond)
}

// SolarFactor is the diurnal envelope: 0 outside [6,18], peaking at 1 at noon.
func SolarFactor(hour float64) float64 {
	if hour < 6 || hour > 18 {
		return 0
	}
	return math.Sin((hour - 6) / 12 * math.Pi)
}

// SolarPower is the PV output in kW with a slow oscillation on top of the
// diurnal envelope.
func SolarPower(hour, nowMS float64) float64 {
	return solarNameplateKW * SolarFactor(hour) * (0.9 + math.Sin(nowMS/10000)*0.1)
}

// LoadPower is the site load in kW: base load with a diurnal swing and a
// small fast oscillation.
func LoadPower(hour, nowMS float64) float64 {
	timeFactor := 0.7 + 0.3*math.Sin((hour-6)/12*math.Pi)
	return baseLoadKW * timeFactor * (0.95 + math.Sin(nowMS/8000)*0.05)
}

// Flows are the unrounded results of one step.
type Flows struct {
	Grid    float64
	Solar   float64
	Battery float64
	Load    float64
	Mode    model.BatteryMode
}

// Step advances st by deltaMS milliseconds ending at now. It is the whole
// physics/economics model; the caller is responsible for locking.
func Step(st *State, params model.BatteryParams, now time.Time, deltaMS float64) Flows {
	hour := HourOfDay(now)
	nowMS := unixMillis(now)
	deltaHours := deltaMS / 1000 / 3600

	solar := SolarPower(hour, nowMS)
	load := LoadPower(hour, nowMS)

	batt := model.Battery{Params: params, State: model.BatteryState{SOC: st.KPIs.BatterySOC}}
	ctl := batt.Control(solar-load, deltaHours)

	grid := load - solar - ctl.PowerKW

	st.Power = model.PowerFlow{
		Grid:    round2(grid),
		Solar:   round2(solar),
		Battery: round2(ctl.PowerKW),
		Load:    round2(load),
	}
	st.KPIs.BatterySOC = ctl.SOCEnd

	st.KPIs.EnergyToday += load * deltaHours
	st.KPIs.PeakPowerToday = math.Max(st.KPIs.PeakPowerToday, load)
	st.KPIs.CostSavings += solar * deltaHours * savingsPerKWh
	st.KPIs.CarbonAvoided += solar * deltaHours * carbonPerKWh

	for _, s := range model.AllSeries {
		st.Charts[s].Append(model.ChartPoint{Timestamp: now, Value: st.Power.Get(s)})
	}
	st.LastUpdated = now

	return Flows{
		Grid:    grid,
		Solar:   solar,
		Battery: ctl.PowerKW,
		Load:    load,
		Mode:    model.ModeFromPowerKW(ctl.PowerKW),
	}
}

// round2 rounds half away from zero, so 0.125 becomes 0.13.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
