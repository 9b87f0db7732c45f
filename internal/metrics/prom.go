// Package metrics exports the simulation state to Prometheus and InfluxDB.
// Both sinks are simulation observers: they see every advance and nothing
// else.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ems-mock/internal/model"
	"ems-mock/internal/simulation"
)

// PromSink mirrors the latest state into gauges and counts advances and
// HTTP requests.
type PromSink struct {
	power    *prometheus.GaugeVec
	soc      prometheus.Gauge
	kpi      *prometheus.GaugeVec
	advances prometheus.Counter
	mode     *prometheus.GaugeVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPromSink registers the EMS collectors on reg. If reg is nil, the
// default registerer is used. Collectors already registered are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ems_power_kw",
			Help: "Latest power flow in kW by flow (grid, solar, battery, load)",
		}, []string{"flow"}),
		soc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ems_battery_soc_percent",
			Help: "Battery state of charge in percent",
		}),
		kpi: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ems_kpi",
			Help: "Accumulated daily KPIs by name",
		}, []string{"name"}),
		advances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ems_simulation_advances_total",
			Help: "Number of times the simulation advanced",
		}),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ems_battery_mode",
			Help: "1 for the battery mode of the latest step, 0 otherwise",
		}, []string{"mode"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ems_http_requests_total",
			Help: "HTTP requests served by method, route and status",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ems_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	var err error
	if s.power, err = register(reg, s.power); err != nil {
		return nil, err
	}
	if s.soc, err = register(reg, s.soc); err != nil {
		return nil, err
	}
	if s.kpi, err = register(reg, s.kpi); err != nil {
		return nil, err
	}
	if s.advances, err = register(reg, s.advances); err != nil {
		return nil, err
	}
	if s.mode, err = register(reg, s.mode); err != nil {
		return nil, err
	}
	if s.requests, err = register(reg, s.requests); err != nil {
		return nil, err
	}
	if s.latency, err = register(reg, s.latency); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// OnAdvance implements simulation.Observer.
func (s *PromSink) OnAdvance(snap simulation.Snapshot, f simulation.Flows) {
	for _, series := range model.AllSeries {
		s.power.WithLabelValues(string(series)).Set(snap.Power.Get(series))
	}
	s.soc.Set(snap.KPIs.BatterySOC)
	s.kpi.WithLabelValues("energy_today_kwh").Set(snap.KPIs.EnergyToday)
	s.kpi.WithLabelValues("peak_power_today_kw").Set(snap.KPIs.PeakPowerToday)
	s.kpi.WithLabelValues("cost_savings").Set(snap.KPIs.CostSavings)
	s.kpi.WithLabelValues("carbon_avoided_kg").Set(snap.KPIs.CarbonAvoided)
	s.kpi.WithLabelValues("active_sites").Set(float64(snap.KPIs.ActiveSites))
	for _, m := range []model.BatteryMode{model.ModeCharging, model.ModeIdle, model.ModeDischarging} {
		v := 0.0
		if f.Mode == m {
			v = 1
		}
		s.mode.WithLabelValues(string(m)).Set(v)
	}
	s.advances.Inc()
}

// ObserveRequest implements middleware.RequestRecorder.
func (s *PromSink) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	s.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	s.latency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Handler serves the exposition format for g. If g is nil, the default
// gatherer is used.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
