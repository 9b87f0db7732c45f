// Package ems derives the read-only API views from the simulation state.
// Every view reads the state exactly once and never mutates it.
package ems

import (
	"math"
	"time"

	"ems-mock/internal/logger"
	"ems-mock/internal/simulation"
)

// StateSource serves the current simulation snapshot.
type StateSource interface {
	State() simulation.Snapshot
}

// Location names where the weather view claims to be.
type Location struct {
	Name  string
	City  string
	State string
}

// DefaultLocation is Chennai.
func DefaultLocation() Location {
	return Location{Name: "Chennai, Tamil Nadu", City: "Chennai", State: "Tamil Nadu"}
}

// Options configure a Service. Zero fields fall back to defaults.
type Options struct {
	Clock    simulation.Clock
	Tariff   *TariffSchedule
	Sites    []Site
	Location Location
	Logger   logger.Logger
}

type Service struct {
	state    StateSource
	clock    simulation.Clock
	tariff   *TariffSchedule
	sites    []Site
	location Location
	log      logger.Logger
}

func NewService(state StateSource, opts Options) *Service {
	s := &Service{
		state:    state,
		clock:    opts.Clock,
		tariff:   opts.Tariff,
		sites:    opts.Sites,
		location: opts.Location,
		log:      opts.Logger,
	}
	if s.clock == nil {
		s.clock = simulation.SystemClock{}
	}
	if s.tariff == nil {
		s.tariff = DefaultTariffSchedule()
	}
	if len(s.sites) == 0 {
		s.sites = DefaultSites()
	}
	if s.location == (Location{}) {
		s.location = DefaultLocation()
	}
	if s.log == nil {
		s.log = logger.NopLogger{}
	}
	return s
}

// atClock returns t's date at hh:mm:00 in t's location.
func atClock(t time.Time, hh, mm int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hh, mm, 0, 0, t.Location())
}

// round rounds half away from zero to n decimals (0.125 -> 0.13, not the
// banker's 0.12).
func round(x float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(x*p) / p
}

// roundInt rounds half to even, the way integer display values are rounded.
func roundInt(x float64) int {
	return int(math.RoundToEven(x))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
