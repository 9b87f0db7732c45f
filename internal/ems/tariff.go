package ems

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// PeriodType is a time-of-day pricing tier.
type PeriodType string

const (
	PeriodPeak    PeriodType = "peak"
	PeriodMidPeak PeriodType = "mid-peak"
	PeriodOffPeak PeriodType = "off-peak"
)

// Rates are per-kWh energy rates plus the fixed monthly components.
type Rates struct {
	Peak         float64
	Normal       float64
	OffPeak      float64
	Export       float64
	DemandCharge float64 // per kW of peak demand per month
	FixedCharge  float64 // per month
	TaxRate      float64 // fraction applied to the bill
}

// DefaultRates is a TANGEDCO-style commercial tariff.
func DefaultRates() Rates {
	return Rates{
		Peak:         8.5,
		Normal:       6.2,
		OffPeak:      4.5,
		Export:       3.5,
		DemandCharge: 350,
		FixedCharge:  120,
		TaxRate:      0.18,
	}
}

// ForType returns the energy rate of a tier.
func (r Rates) ForType(t PeriodType) float64 {
	switch t {
	case PeriodPeak:
		return r.Peak
	case PeriodOffPeak:
		return r.OffPeak
	default:
		return r.Normal
	}
}

// Average is the mean of the three energy rates.
func (r Rates) Average() float64 {
	return (r.Peak + r.Normal + r.OffPeak) / 3
}

// TariffWindow is a daily [Start, End) window priced at one tier.
// Start > End wraps across midnight.
type TariffWindow struct {
	Name  string
	Type  PeriodType
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// DefaultTariffWindows covers the whole day.
func DefaultTariffWindows() []TariffWindow {
	return []TariffWindow{
		{Name: "Peak Hours", Type: PeriodPeak, Start: "06:00", End: "10:00"},
		{Name: "Normal Hours", Type: PeriodMidPeak, Start: "10:00", End: "18:00"},
		{Name: "Peak Hours", Type: PeriodPeak, Start: "18:00", End: "22:00"},
		{Name: "Off-Peak Hours", Type: PeriodOffPeak, Start: "22:00", End: "06:00"},
	}
}

type parsedWindow struct {
	TariffWindow
	startMins int
	endMins   int
}

// TariffSchedule resolves the active tier for an hour of day.
type TariffSchedule struct {
	Rates   Rates
	windows []parsedWindow
}

func NewTariffSchedule(rates Rates, windows []TariffWindow) (*TariffSchedule, error) {
	if len(windows) == 0 {
		return nil, errors.New("tariff schedule needs at least one window")
	}
	s := &TariffSchedule{Rates: rates}
	for _, w := range windows {
		switch w.Type {
		case PeriodPeak, PeriodMidPeak, PeriodOffPeak:
		default:
			return nil, fmt.Errorf("window %q: unknown type %q", w.Name, w.Type)
		}
		start, err := ParseHHMM(w.Start)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", w.Name, err)
		}
		end, err := ParseHHMM(w.End)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", w.Name, err)
		}
		s.windows = append(s.windows, parsedWindow{TariffWindow: w, startMins: start, endMins: end})
	}
	return s, nil
}

// DefaultTariffSchedule returns the built-in schedule.
func DefaultTariffSchedule() *TariffSchedule {
	s, err := NewTariffSchedule(DefaultRates(), DefaultTariffWindows())
	if err != nil {
		panic(err)
	}
	return s
}

// Period is the tier in force at a given time.
type Period struct {
	Type      PeriodType
	Rate      float64
	StartHour int
	EndHour   int
}

// PeriodAt returns the first window containing the given hour. Hours no
// window covers are priced at the normal rate.
func (s *TariffSchedule) PeriodAt(hour int) Period {
	mins := hour * 60
	for _, w := range s.windows {
		if inWindow(mins, w.startMins, w.endMins) {
			return Period{
				Type:      w.Type,
				Rate:      s.Rates.ForType(w.Type),
				StartHour: w.startMins / 60,
				EndHour:   w.endMins / 60,
			}
		}
	}
	return Period{Type: PeriodMidPeak, Rate: s.Rates.Normal, StartHour: hour, EndHour: (hour + 1) % 24}
}

// RateAt returns the energy rate and tier for an hour of day.
func (s *TariffSchedule) RateAt(hour int) (float64, PeriodType) {
	p := s.PeriodAt(hour)
	return p.Rate, p.Type
}

// Entries lists the schedule for display.
func (s *TariffSchedule) Entries() []TariffEntry {
	out := make([]TariffEntry, 0, len(s.windows))
	for _, w := range s.windows {
		out = append(out, TariffEntry{
			Name:      w.Name,
			StartHour: w.startMins / 60,
			EndHour:   w.endMins / 60,
			Rate:      s.Rates.ForType(w.Type),
			Type:      w.Type,
		})
	}
	return out
}

// periodName turns "mid-peak" into "Mid Peak Hours".
func periodName(t PeriodType) string {
	words := strings.Fields(strings.ReplaceAll(string(t), "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Hours"
}

// ParseHHMM parses a 24h "HH:MM" time into minutes after midnight.
func ParseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// If start == end, the window is empty (always false).
// If start > end, it wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	return tMins >= start || tMins < end
}

// Tariff derives the cost picture from the accumulated KPIs.
func (s *Service) Tariff() TariffReport {
	st := s.state.State()
	now := s.clock.Now()

	period := s.tariff.PeriodAt(now.Hour())
	rates := s.tariff.Rates

	energyToday := st.KPIs.EnergyToday
	costSavings := st.KPIs.CostSavings
	peakKW := st.KPIs.PeakPowerToday

	todayCost := math.Max(0, energyToday*rates.Average()*0.3)
	monthToDate := todayCost * 15
	projectedMonth := todayCost * 30

	demandCharge := peakKW * rates.DemandCharge / 30

	energyCharges := projectedMonth
	demandCharges := peakKW * rates.DemandCharge
	fixedCharges := rates.FixedCharge
	taxes := (energyCharges + demandCharges + fixedCharges) * rates.TaxRate
	total := energyCharges + demandCharges + fixedCharges + taxes

	baseline := todayCost + costSavings
	savingsPct := 0.0
	if baseline > 0 {
		savingsPct = costSavings / baseline * 100
	}

	return TariffReport{
		CurrentRate: TariffEntry{
			Name:      periodName(period.Type),
			StartHour: period.StartHour,
			EndHour:   period.EndHour,
			Rate:      period.Rate,
			Type:      period.Type,
		},
		TodayCost:          round(todayCost, 2),
		MonthToDateCost:    round(monthToDate, 2),
		ProjectedMonthCost: round(projectedMonth, 2),
		SavingsVsGrid:      round(costSavings, 2),
		SavingsPercentage:  round(savingsPct, 1),
		DemandCharge:       round(demandCharge, 2),
		PeakDemandCost:     round(demandCharge, 2),
		Billing: Billing{
			EnergyCharges:    round(energyCharges, 2),
			DemandCharges:    round(demandCharges, 2),
			FixedCharges:     round(fixedCharges, 2),
			Taxes:            round(taxes, 2),
			Total:            round(total, 2),
			ProjectedMonthly: round(total, 2),
		},
		TariffSchedule: s.tariff.Entries(),
		CostBreakdown: CostBreakdown{
			Solar:   round(costSavings*0.7, 2),
			Grid:    round(todayCost, 2),
			Battery: round(costSavings*0.3, 2),
		},
	}
}
