package ems

import (
	"time"

	"ems-mock/internal/analysis"
	"ems-mock/internal/model"
)

// LiveTelemetry is the instantaneous power picture.
type LiveTelemetry struct {
	GridPower    float64   `json:"gridPower"`
	SolarPower   float64   `json:"solarPower"`
	LoadPower    float64   `json:"loadPower"`
	BatteryPower float64   `json:"batteryPower"`
	BatterySOC   float64   `json:"batterySOC"`
	Timestamp    time.Time `json:"timestamp"`
}

// KPIReport carries the accumulated business metrics.
type KPIReport struct {
	EnergyToday   float64   `json:"energyToday"`
	PeakPower     float64   `json:"peakPower"`
	CostSavings   float64   `json:"costSavings"`
	CarbonAvoided float64   `json:"carbonAvoided"`
	ActiveSites   int       `json:"activeSites"`
	Timestamp     time.Time `json:"timestamp"`
}

// ChartSet holds the four rolling chart series.
type ChartSet struct {
	Grid      []model.ChartPoint `json:"grid"`
	Solar     []model.ChartPoint `json:"solar"`
	Load      []model.ChartPoint `json:"load"`
	Battery   []model.ChartPoint `json:"battery"`
	Timestamp time.Time          `json:"timestamp"`
}

// ChartSummary holds per-series statistics over the chart buffers.
type ChartSummary struct {
	Series    map[model.Series]analysis.SeriesStats `json:"series"`
	Timestamp time.Time                             `json:"timestamp"`
}

type Analytics struct {
	TodayConsumption     float64              `json:"todayConsumption"`
	YesterdayConsumption float64              `json:"yesterdayConsumption"`
	WeekConsumption      float64              `json:"weekConsumption"`
	LastWeekConsumption  float64              `json:"lastWeekConsumption"`
	MonthConsumption     float64              `json:"monthConsumption"`
	LastMonthConsumption float64              `json:"lastMonthConsumption"`
	PeakDemand           float64              `json:"peakDemand"`
	PeakDemandTime       time.Time            `json:"peakDemandTime"`
	AverageLoadFactor    float64              `json:"averageLoadFactor"`
	Trends               Trends               `json:"trends"`
	HistoricalData       []HistoricalPoint    `json:"historicalData"`
	ConsumptionBreakdown ConsumptionBreakdown `json:"consumptionBreakdown"`
}

type Trends struct {
	Daily   Trend `json:"daily"`
	Weekly  Trend `json:"weekly"`
	Monthly Trend `json:"monthly"`
}

// Trend compares a period with the one before it.
type Trend struct {
	Period     string  `json:"period"`
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	Change     float64 `json:"change"` // percent
	IsPositive bool    `json:"isPositive"`
}

type HistoricalPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Category  string    `json:"category"`
}

// ConsumptionBreakdown splits the current load by end use, in kW.
type ConsumptionBreakdown struct {
	HVAC      float64 `json:"hvac"`
	Lighting  float64 `json:"lighting"`
	Equipment float64 `json:"equipment"`
	Other     float64 `json:"other"`
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

type Alert struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Severity     Severity  `json:"severity"`
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	Acknowledged bool      `json:"acknowledged"`
}

type TariffEntry struct {
	Name      string     `json:"name"`
	StartHour int        `json:"startHour"`
	EndHour   int        `json:"endHour"`
	Rate      float64    `json:"rate"`
	Type      PeriodType `json:"type"`
}

type Billing struct {
	EnergyCharges    float64 `json:"energyCharges"`
	DemandCharges    float64 `json:"demandCharges"`
	FixedCharges     float64 `json:"fixedCharges"`
	Taxes            float64 `json:"taxes"`
	Total            float64 `json:"total"`
	ProjectedMonthly float64 `json:"projectedMonthly"`
}

type CostBreakdown struct {
	Solar   float64 `json:"solar"`
	Grid    float64 `json:"grid"`
	Battery float64 `json:"battery"`
}

type TariffReport struct {
	CurrentRate        TariffEntry   `json:"currentRate"`
	TodayCost          float64       `json:"todayCost"`
	MonthToDateCost    float64       `json:"monthToDateCost"`
	ProjectedMonthCost float64       `json:"projectedMonthCost"`
	SavingsVsGrid      float64       `json:"savingsVsGrid"`
	SavingsPercentage  float64       `json:"savingsPercentage"`
	DemandCharge       float64       `json:"demandCharge"`
	PeakDemandCost     float64       `json:"peakDemandCost"`
	Billing            Billing       `json:"billing"`
	TariffSchedule     []TariffEntry `json:"tariffSchedule"`
	CostBreakdown      CostBreakdown `json:"costBreakdown"`
}

type CurrentWeather struct {
	Temperature     float64 `json:"temperature"`
	FeelsLike       float64 `json:"feelsLike"`
	Humidity        int     `json:"humidity"`
	CloudCover      int     `json:"cloudCover"`
	WindSpeed       int     `json:"windSpeed"`
	WindDirection   string  `json:"windDirection"`
	Condition       string  `json:"condition"`
	SolarIrradiance int     `json:"solarIrradiance"`
	UVIndex         int     `json:"uvIndex"`
}

type HourlyForecast struct {
	Hour            string  `json:"hour"`
	Temperature     float64 `json:"temperature"`
	CloudCover      int     `json:"cloudCover"`
	SolarIrradiance int     `json:"solarIrradiance"`
}

type Weather struct {
	Location       string           `json:"location"`
	City           string           `json:"city"`
	State          string           `json:"state"`
	Timestamp      time.Time        `json:"timestamp"`
	Current        CurrentWeather   `json:"current"`
	HourlyForecast []HourlyForecast `json:"hourlyForecast"`
	Sunrise        time.Time        `json:"sunrise"`
	Sunset         time.Time        `json:"sunset"`
}

type SiteStatus struct {
	SiteID       string    `json:"siteId"`
	Name         string    `json:"name"`
	Capacity     float64   `json:"capacity"`
	CurrentPower float64   `json:"currentPower"`
	SOC          float64   `json:"soc"`
	Efficiency   float64   `json:"efficiency"`
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
}
