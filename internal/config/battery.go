package config

import "ems-mock/internal/model"

// BatteryConfig tunes the threshold controller. Omitted keys keep the
// built-in values.
type BatteryConfig struct {
	ChargeThresholdKW    float64 `yaml:"charge_threshold_kw"`
	DischargeThresholdKW float64 `yaml:"discharge_threshold_kw"`
	MaxPowerKW           float64 `yaml:"max_power_kw"`
	Efficiency           float64 `yaml:"efficiency"`
	ChargeCeilingSOC     float64 `yaml:"charge_ceiling_soc"`
	DischargeFloorSOC    float64 `yaml:"discharge_floor_soc"`
	MinSOC               float64 `yaml:"min_soc"`
	MaxSOC               float64 `yaml:"max_soc"`
	SOCGain              float64 `yaml:"soc_gain"`
}

func batteryFromModel(p model.BatteryParams) BatteryConfig {
	return BatteryConfig{
		ChargeThresholdKW:    p.ChargeThresholdKW,
		DischargeThresholdKW: p.DischargeThresholdKW,
		MaxPowerKW:           p.MaxPowerKW,
		Efficiency:           p.Efficiency,
		ChargeCeilingSOC:     p.ChargeCeilingSOC,
		DischargeFloorSOC:    p.DischargeFloorSOC,
		MinSOC:               p.MinSOC,
		MaxSOC:               p.MaxSOC,
		SOCGain:              p.SOCGain,
	}
}

func (b BatteryConfig) ToModelParams() model.BatteryParams {
	return model.BatteryParams{
		ChargeThresholdKW:    b.ChargeThresholdKW,
		DischargeThresholdKW: b.DischargeThresholdKW,
		MaxPowerKW:           b.MaxPowerKW,
		Efficiency:           b.Efficiency,
		ChargeCeilingSOC:     b.ChargeCeilingSOC,
		DischargeFloorSOC:    b.DischargeFloorSOC,
		MinSOC:               b.MinSOC,
		MaxSOC:               b.MaxSOC,
		SOCGain:              b.SOCGain,
	}
}
