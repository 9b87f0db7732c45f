package config

import (
	"errors"
	"fmt"

	"ems-mock/internal/ems"
)

// TariffConfig holds the energy rates (per kWh), the monthly demand and
// fixed charges, and the daily pricing windows.
type TariffConfig struct {
	Peak         float64              `yaml:"peak"`
	Normal       float64              `yaml:"normal"`
	OffPeak      float64              `yaml:"off_peak"`
	Export       float64              `yaml:"export"`
	DemandCharge float64              `yaml:"demand_charge"`
	FixedCharge  float64              `yaml:"fixed_charge"`
	TaxRate      float64              `yaml:"tax_rate"`
	Windows      []TariffWindowConfig `yaml:"windows"`
}

type TariffWindowConfig struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"` // peak, mid-peak or off-peak
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DefaultTariffWindows mirrors the built-in schedule of the ems package.
func DefaultTariffWindows() []TariffWindowConfig {
	def := ems.DefaultTariffWindows()
	out := make([]TariffWindowConfig, 0, len(def))
	for _, w := range def {
		out = append(out, TariffWindowConfig{Name: w.Name, Type: string(w.Type), Start: w.Start, End: w.End})
	}
	return out
}

func (t TariffConfig) Rates() ems.Rates {
	return ems.Rates{
		Peak:         t.Peak,
		Normal:       t.Normal,
		OffPeak:      t.OffPeak,
		Export:       t.Export,
		DemandCharge: t.DemandCharge,
		FixedCharge:  t.FixedCharge,
		TaxRate:      t.TaxRate,
	}
}

// ToSchedule builds the runtime schedule, parsing every window.
func (t TariffConfig) ToSchedule() (*ems.TariffSchedule, error) {
	windows := make([]ems.TariffWindow, 0, len(t.Windows))
	for _, w := range t.Windows {
		windows = append(windows, ems.TariffWindow{
			Name:  w.Name,
			Type:  ems.PeriodType(w.Type),
			Start: w.Start,
			End:   w.End,
		})
	}
	return ems.NewTariffSchedule(t.Rates(), windows)
}

func (t TariffConfig) Validate() error {
	for name, v := range map[string]float64{
		"peak":          t.Peak,
		"normal":        t.Normal,
		"off_peak":      t.OffPeak,
		"export":        t.Export,
		"demand_charge": t.DemandCharge,
		"fixed_charge":  t.FixedCharge,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	if t.TaxRate < 0 || t.TaxRate > 1 {
		return errors.New("tax_rate must be in [0, 1]")
	}
	_, err := t.ToSchedule()
	return err
}
