package ems

import (
	"errors"
	"fmt"
)

// Site is one entry of the static site roster.
type Site struct {
	ID       string
	Name     string
	Capacity float64 // kW
}

// DefaultSites is the built-in roster of six sites.
func DefaultSites() []Site {
	return []Site{
		{ID: "site-001", Name: "Hyderabad Data Center", Capacity: 1200},
		{ID: "site-002", Name: "Mumbai Manufacturing", Capacity: 800},
		{ID: "site-003", Name: "Pune Office Complex", Capacity: 500},
		{ID: "site-004", Name: "Bangalore Tech Park", Capacity: 1500},
		{ID: "site-005", Name: "Chennai Industrial", Capacity: 900},
		{ID: "site-006", Name: "Delhi Campus", Capacity: 600},
	}
}

// ValidateSites rejects an empty roster and duplicate or blank ids.
func ValidateSites(sites []Site) error {
	if len(sites) == 0 {
		return errors.New("at least one site is required")
	}
	seen := make(map[string]bool, len(sites))
	for i, s := range sites {
		if s.ID == "" {
			return fmt.Errorf("site %d: id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("site %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}

// Sites spreads the site load across the roster. Per-site figures vary
// with the roster index only.
func (s *Service) Sites() []SiteStatus {
	st := s.state.State()
	now := s.clock.Now()
	n := float64(len(s.sites))

	out := make([]SiteStatus, 0, len(s.sites))
	for idx, site := range s.sites {
		variance := 0.8 + float64(idx)*0.05
		soc := clamp(st.KPIs.BatterySOC+float64(idx-3)*2, 10, 100)
		status := "online"
		if soc <= 20 {
			status = "warning"
		}
		out = append(out, SiteStatus{
			SiteID:       site.ID,
			Name:         site.Name,
			Capacity:     site.Capacity,
			CurrentPower: round(st.Power.Load*variance/n, 2),
			SOC:          round(soc, 1),
			Efficiency:   round(85+float64(idx)*2, 1),
			Status:       status,
			Timestamp:    now,
		})
	}
	return out
}
