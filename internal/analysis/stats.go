package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"ems-mock/internal/model"
)

// SeriesStats is a summary of one chart series.
type SeriesStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	P05    float64 `json:"p05"`
	P95    float64 `json:"p95"`
	// Spread is P95 - P05.
	Spread float64 `json:"spread"`
}

// ComputeChartStats summarizes the values of a chart series.
func ComputeChartStats(points []model.ChartPoint) SeriesStats {
	vals := make([]float64, 0, len(points))
	for _, p := range points {
		vals = append(vals, p.Value)
	}
	return ComputeStats(vals)
}

// ComputeStats summarizes vals. An empty input yields the zero value; the
// standard deviation of fewer than two samples is 0.
func ComputeStats(vals []float64) SeriesStats {
	s := SeriesStats{Count: len(vals)}
	if len(vals) == 0 {
		return s
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Mean = round3(stat.Mean(sorted, nil))
	if len(sorted) > 1 {
		s.StdDev = round3(stat.StdDev(sorted, nil))
	}
	s.P05 = round3(stat.Quantile(0.05, stat.LinInterp, sorted, nil))
	s.P95 = round3(stat.Quantile(0.95, stat.LinInterp, sorted, nil))
	s.Spread = round3(s.P95 - s.P05)
	return s
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
