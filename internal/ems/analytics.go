package ems

// Shares of the current load by end use.
const (
	shareHVAC      = 0.45
	shareLighting  = 0.25
	shareEquipment = 0.20
	shareOther     = 0.10
)

// Analytics builds consumption comparisons. The history is synthetic: every
// figure is a fixed multiple of today's accumulated energy.
func (s *Service) Analytics() Analytics {
	st := s.state.State()
	now := s.clock.Now()

	load := st.Power.Load
	today := st.KPIs.EnergyToday
	peak := st.KPIs.PeakPowerToday

	yesterday := today * 0.92
	week := today * 6.5
	lastWeek := week * 0.88
	month := today * 22
	lastMonth := month * 0.95

	history := make([]HistoricalPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		history = append(history, HistoricalPoint{
			Timestamp: now.AddDate(0, 0, -i),
			Value:     round(today*(0.9+float64(i%3)*0.1), 2),
			Category:  "consumption",
		})
	}

	loadFactor := 0.0
	if peak > 0 {
		loadFactor = load / peak * 100
	}

	return Analytics{
		TodayConsumption:     round(today, 2),
		YesterdayConsumption: round(yesterday, 2),
		WeekConsumption:      round(week, 2),
		LastWeekConsumption:  round(lastWeek, 2),
		MonthConsumption:     round(month, 2),
		LastMonthConsumption: round(lastMonth, 2),
		PeakDemand:           round(peak, 2),
		PeakDemandTime:       atClock(now, 13, 30),
		AverageLoadFactor:    round(loadFactor, 2),
		Trends: Trends{
			Daily:   newTrend("day", today, yesterday),
			Weekly:  newTrend("week", week, lastWeek),
			Monthly: newTrend("month", month, lastMonth),
		},
		HistoricalData: history,
		ConsumptionBreakdown: ConsumptionBreakdown{
			HVAC:      round(load*shareHVAC, 2),
			Lighting:  round(load*shareLighting, 2),
			Equipment: round(load*shareEquipment, 2),
			Other:     round(load*shareOther, 2),
		},
	}
}

func newTrend(period string, current, previous float64) Trend {
	change := 0.0
	if previous > 0 {
		change = (current - previous) / previous * 100
	}
	return Trend{
		Period:     period,
		Current:    round(current, 2),
		Previous:   round(previous, 2),
		Change:     round(change, 1),
		IsPositive: change > 0,
	}
}
