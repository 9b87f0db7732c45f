// Package replay drives the simulation on a stepped clock, headless, and
// records what happened at every step.
package replay

import (
	"errors"
	"fmt"
	"time"

	"ems-mock/internal/ems"
	"ems-mock/internal/logger"
	"ems-mock/internal/simulation"
)

// Options describe a replay run.
type Options struct {
	Start    time.Time
	Step     time.Duration
	Steps    int
	Settings simulation.Settings
	// Tariff prices grid import per step. Nil uses the default schedule.
	Tariff *ems.TariffSchedule
}

type Engine struct {
	log logger.Logger
}

func New(log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Engine{log: log}
}

// Run steps a fresh simulation Steps times, Step apart, starting at Start.
func (e *Engine) Run(opts Options) (*Result, error) {
	if opts.Steps <= 0 {
		return nil, errors.New("steps must be > 0")
	}
	settings := opts.Settings
	if settings.MinAdvance <= 0 {
		settings.MinAdvance = simulation.DefaultSettings().MinAdvance
	}
	if opts.Step <= settings.MinAdvance {
		return nil, fmt.Errorf("step %s must exceed the minimum advance %s", opts.Step, settings.MinAdvance)
	}
	if opts.Start.IsZero() {
		return nil, errors.New("start time is required")
	}
	tariff := opts.Tariff
	if tariff == nil {
		tariff = ems.DefaultTariffSchedule()
	}

	clock := simulation.NewManualClock(opts.Start)
	mgr, err := simulation.NewManager(clock, settings, e.log)
	if err != nil {
		return nil, err
	}

	var last simulation.Flows
	mgr.AddObserver(simulation.ObserverFunc(func(_ simulation.Snapshot, f simulation.Flows) {
		last = f
	}))

	prev := mgr.State() // initializes at Start
	res := &Result{Ledger: make([]LedgerRow, 0, opts.Steps)}
	dtH := opts.Step.Hours()

	for idx := 0; idx < opts.Steps; idx++ {
		clock.Advance(opts.Step)
		snap := mgr.State()
		if snap.Advances != prev.Advances+1 {
			return nil, fmt.Errorf("step %d did not advance the simulation", idx)
		}

		rate, period := tariff.RateAt(snap.LastUpdated.Hour())
		gridCost := 0.0
		if last.Grid > 0 {
			gridCost = last.Grid * dtH * rate
		}

		row := LedgerRow{
			Index: idx,

			Timestamp: snap.LastUpdated,
			DeltaMS:   float64(opts.Step) / float64(time.Millisecond),

			GridKW:    snap.Power.Grid,
			SolarKW:   snap.Power.Solar,
			BatteryKW: snap.Power.Battery,
			LoadKW:    snap.Power.Load,

			Mode: last.Mode,

			SOCStart: prev.KPIs.BatterySOC,
			SOCEnd:   snap.KPIs.BatterySOC,

			TariffType: period,
			Rate:       rate,
			GridCost:   gridCost,

			EnergyToday:    snap.KPIs.EnergyToday,
			PeakPowerToday: snap.KPIs.PeakPowerToday,
			CostSavings:    snap.KPIs.CostSavings,
			CarbonAvoided:  snap.KPIs.CarbonAvoided,
		}
		res.Ledger = append(res.Ledger, row)

		if last.Grid > 0 {
			res.GridImportKWh += last.Grid * dtH
		} else {
			res.GridExportKWh += -last.Grid * dtH
		}
		if last.Battery > 0 {
			res.ChargedKWh += last.Battery * dtH
		} else {
			res.DischargedKWh += -last.Battery * dtH
		}
		res.GridCost += gridCost
		prev = snap
	}

	res.FinalSOC = prev.KPIs.BatterySOC
	res.EnergyKWh = prev.KPIs.EnergyToday
	res.PeakPowerKW = prev.KPIs.PeakPowerToday
	res.CostSavings = prev.KPIs.CostSavings
	res.CarbonAvoidedKG = prev.KPIs.CarbonAvoided

	e.log.Infow("replay finished", map[string]any{
		"steps":     opts.Steps,
		"start":     opts.Start.Format(time.RFC3339),
		"final_soc": res.FinalSOC,
		"grid_cost": res.GridCost,
	})
	return res, nil
}
