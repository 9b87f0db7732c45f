package model

import (
	"errors"
	"math"
)

// BatteryParams defines the threshold controller driving the site battery.
// Units:
// - *KW: kW
// - *SOC: percent 0..100
// - Efficiency: 0..1, fraction of the surplus/deficit routed through the battery
// - SOCGain: multiplier applied to the energy/100 SOC delta
type BatteryParams struct {
	ChargeThresholdKW    float64
	DischargeThresholdKW float64
	MaxPowerKW           float64
	Efficiency           float64
	ChargeCeilingSOC     float64
	DischargeFloorSOC    float64
	MinSOC               float64
	MaxSOC               float64
	SOCGain              float64
}

// DefaultBatteryParams returns the controller used by the simulation.
func DefaultBatteryParams() BatteryParams {
	return BatteryParams{
		ChargeThresholdKW:    5,
		DischargeThresholdKW: 5,
		MaxPowerKW:           25,
		Efficiency:           0.8,
		ChargeCeilingSOC:     95,
		DischargeFloorSOC:    15,
		MinSOC:               10,
		MaxSOC:               100,
		SOCGain:              2,
	}
}

// BatteryState captures mutable state.
type BatteryState struct {
	// SOC is the state of charge in percent.
	SOC float64
}

// Battery is a convenience wrapper bundling params + state.
type Battery struct {
	Params BatteryParams
	State  BatteryState
}

func NewBattery(params BatteryParams, initialSOC float64) (*Battery, error) {
	b := &Battery{
		Params: params,
		State:  BatteryState{SOC: initialSOC},
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Battery) Validate() error {
	p := b.Params
	if p.MaxPowerKW <= 0 {
		return errors.New("MaxPowerKW must be > 0")
	}
	if p.ChargeThresholdKW < 0 || p.DischargeThresholdKW < 0 {
		return errors.New("thresholds must be >= 0")
	}
	if p.Efficiency <= 0 || p.Efficiency > 1 {
		return errors.New("Efficiency must be in (0, 1]")
	}
	if p.MinSOC < 0 || p.MaxSOC > 100 || p.MinSOC > p.MaxSOC {
		return errors.New("MinSOC/MaxSOC must satisfy 0<=MinSOC<=MaxSOC<=100")
	}
	if p.ChargeCeilingSOC > p.MaxSOC || p.DischargeFloorSOC < p.MinSOC {
		return errors.New("charge ceiling and discharge floor must lie within [MinSOC, MaxSOC]")
	}
	if b.State.SOC < p.MinSOC || b.State.SOC > p.MaxSOC {
		return errors.New("initial SOC must be within [MinSOC, MaxSOC]")
	}
	if p.SOCGain <= 0 {
		return errors.New("SOCGain must be > 0")
	}
	return nil
}

// ControlResult captures what the controller did in one step.
type ControlResult struct {
	PowerKW  float64 // positive = charging, negative = discharging
	SOCStart float64
	SOCEnd   float64
}

// Control runs the threshold controller for one step.
//
// netKW is solar minus load. A surplus above the charge threshold charges the
// battery while SOC is under the ceiling; a deficit beyond the discharge
// threshold discharges it while SOC is above the floor. In both cases the
// battery takes Efficiency of the imbalance, capped at MaxPowerKW.
func (b *Battery) Control(netKW float64, deltaHours float64) ControlResult {
	p := b.Params
	res := ControlResult{SOCStart: b.State.SOC}

	soc := b.State.SOC
	power := 0.0
	switch {
	case netKW > p.ChargeThresholdKW && soc < p.ChargeCeilingSOC:
		power = math.Min(netKW*p.Efficiency, p.MaxPowerKW)
		soc += power * deltaHours / 100 * p.SOCGain
	case netKW < -p.DischargeThresholdKW && soc > p.DischargeFloorSOC:
		power = math.Max(netKW*p.Efficiency, -p.MaxPowerKW)
		soc += power * deltaHours / 100 * p.SOCGain
	}

	b.State.SOC = clamp(soc, p.MinSOC, p.MaxSOC)
	res.PowerKW = power
	res.SOCEnd = b.State.SOC
	return res
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
