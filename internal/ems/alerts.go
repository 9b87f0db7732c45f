package ems

import (
	"fmt"
	"math"
)

const (
	socCriticalBelow = 20.0
	socWarningBelow  = 30.0
	gridHighAboveKW  = 50.0
)

// Alerts evaluates thresholds against the current state. There is no alert
// history: each call reflects only the moment it runs.
func (s *Service) Alerts() []Alert {
	st := s.state.State()
	now := s.clock.Now()
	alerts := []Alert{}

	soc := st.KPIs.BatterySOC
	switch {
	case soc < socCriticalBelow:
		alerts = append(alerts, Alert{
			ID:        "alert-battery-critical",
			Timestamp: now,
			Severity:  SeverityCritical,
			Category:  "battery",
			Title:     "Critical Battery Level",
			Message:   fmt.Sprintf("Battery SOC at %d%%. Immediate charging required.", roundInt(soc)),
		})
	case soc < socWarningBelow:
		alerts = append(alerts, Alert{
			ID:        "alert-battery-warning",
			Timestamp: now,
			Severity:  SeverityWarning,
			Category:  "battery",
			Title:     "Low Battery Level",
			Message:   fmt.Sprintf("Battery SOC at %d%%. Consider charging.", roundInt(soc)),
		})
	}

	grid := math.Abs(st.Power.Grid)
	if grid > gridHighAboveKW {
		alerts = append(alerts, Alert{
			ID:        "alert-grid-high",
			Timestamp: now,
			Severity:  SeverityWarning,
			Category:  "grid",
			Title:     "High Grid Power",
			Message:   fmt.Sprintf("Grid power at %d kW.", roundInt(grid)),
		})
	}

	if len(alerts) > 0 {
		s.log.Debugf("%d alert(s) active", len(alerts))
	}
	return alerts
}
