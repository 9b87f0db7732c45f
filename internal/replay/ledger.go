package replay

import (
	"time"

	"ems-mock/internal/ems"
	"ems-mock/internal/model"
)

// LedgerRow is one simulation step of a replay.
type LedgerRow struct {
	Index int

	Timestamp time.Time
	DeltaMS   float64

	GridKW    float64
	SolarKW   float64
	BatteryKW float64
	LoadKW    float64

	Mode model.BatteryMode

	SOCStart float64
	SOCEnd   float64

	TariffType ems.PeriodType
	Rate       float64
	// GridCost prices this step's grid import at Rate. Export is free.
	GridCost float64

	EnergyToday    float64
	PeakPowerToday float64
	CostSavings    float64
	CarbonAvoided  float64
}

// Result is the ledger plus totals over the whole run.
type Result struct {
	Ledger []LedgerRow

	FinalSOC        float64
	EnergyKWh       float64
	PeakPowerKW     float64
	CostSavings     float64
	CarbonAvoidedKG float64
	GridImportKWh   float64
	GridExportKWh   float64
	ChargedKWh      float64
	DischargedKWh   float64
	GridCost        float64
}
