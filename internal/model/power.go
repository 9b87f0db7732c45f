package model

import "time"

// PowerFlow holds instantaneous site power in kW.
// Battery: positive = charging, negative = discharging.
// Grid: positive = import, negative = export.
type PowerFlow struct {
	Grid    float64 `json:"grid"`
	Solar   float64 `json:"solar"`
	Battery float64 `json:"battery"`
	Load    float64 `json:"load"`
}

// Get returns the value of the flow backing the given series.
func (p PowerFlow) Get(s Series) float64 {
	switch s {
	case SeriesGrid:
		return p.Grid
	case SeriesSolar:
		return p.Solar
	case SeriesBattery:
		return p.Battery
	case SeriesLoad:
		return p.Load
	}
	return 0
}

// KPIs are accumulated since process start. There is no daily reset.
type KPIs struct {
	BatterySOC     float64 `json:"batterySOC"`
	EnergyToday    float64 `json:"energyToday"`    // kWh
	PeakPowerToday float64 `json:"peakPowerToday"` // kW
	CostSavings    float64 `json:"costSavings"`
	CarbonAvoided  float64 `json:"carbonAvoided"` // kg CO2
	ActiveSites    int     `json:"activeSites"`
}

// ChartPoint is one timestamped sample of a chart series.
type ChartPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Series names a chart buffer.
type Series string

const (
	SeriesGrid    Series = "grid"
	SeriesSolar   Series = "solar"
	SeriesLoad    Series = "load"
	SeriesBattery Series = "battery"
)

// AllSeries lists the chart series in append order.
var AllSeries = []Series{SeriesGrid, SeriesSolar, SeriesLoad, SeriesBattery}
