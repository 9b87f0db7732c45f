package ems

import (
	"ems-mock/internal/analysis"
	"ems-mock/internal/model"
	"ems-mock/internal/simulation"
)

func (s *Service) LiveTelemetry() LiveTelemetry {
	st := s.state.State()
	return LiveTelemetry{
		GridPower:    st.Power.Grid,
		SolarPower:   st.Power.Solar,
		LoadPower:    st.Power.Load,
		BatteryPower: st.Power.Battery,
		BatterySOC:   round(st.KPIs.BatterySOC, 2),
		Timestamp:    st.LastUpdated,
	}
}

func (s *Service) KPIs() KPIReport {
	st := s.state.State()
	return KPIReport{
		EnergyToday:   round(st.KPIs.EnergyToday, 2),
		PeakPower:     round(st.KPIs.PeakPowerToday, 2),
		CostSavings:   round(st.KPIs.CostSavings, 2),
		CarbonAvoided: round(st.KPIs.CarbonAvoided, 2),
		ActiveSites:   st.KPIs.ActiveSites,
		Timestamp:     st.LastUpdated,
	}
}

func (s *Service) Charts() ChartSet {
	return chartSet(s.state.State())
}

// SiteCharts returns the global charts whatever the site id. There is no
// per-site history.
func (s *Service) SiteCharts(siteID string) ChartSet {
	s.log.Debugf("site charts requested for %q, serving global charts", siteID)
	return s.Charts()
}

// ChartSummary computes statistics over each chart buffer.
func (s *Service) ChartSummary() ChartSummary {
	st := s.state.State()
	out := ChartSummary{
		Series:    make(map[model.Series]analysis.SeriesStats, len(model.AllSeries)),
		Timestamp: st.LastUpdated,
	}
	for _, series := range model.AllSeries {
		out.Series[series] = analysis.ComputeChartStats(st.Charts[series])
	}
	return out
}

func chartSet(st simulation.Snapshot) ChartSet {
	return ChartSet{
		Grid:      nonNil(st.Charts[model.SeriesGrid]),
		Solar:     nonNil(st.Charts[model.SeriesSolar]),
		Load:      nonNil(st.Charts[model.SeriesLoad]),
		Battery:   nonNil(st.Charts[model.SeriesBattery]),
		Timestamp: st.LastUpdated,
	}
}

func nonNil(p []model.ChartPoint) []model.ChartPoint {
	if p == nil {
		return []model.ChartPoint{}
	}
	return p
}
