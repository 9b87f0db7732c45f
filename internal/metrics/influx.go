package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"ems-mock/internal/logger"
	"ems-mock/internal/simulation"
)

const (
	influxMeasurement = "ems_state"
	influxQueueSize   = 256
)

// InfluxConfig locates the InfluxDB bucket receiving the state points.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxSink writes one point per advance. OnAdvance only enqueues; Run
// performs the writes.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger

	queue     chan *write.Point
	closeOnce sync.Once
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
		queue:    make(chan *write.Point, influxQueueSize),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns nil when
// the health check fails. Callers skip the observer in that case.
func NewInfluxSinkWithFallback(ctx context.Context, cfg InfluxConfig) *InfluxSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return nil
	}
	return sink
}

// OnAdvance implements simulation.Observer. Points are dropped when the
// queue is full.
func (s *InfluxSink) OnAdvance(snap simulation.Snapshot, f simulation.Flows) {
	select {
	case s.queue <- statePoint(snap, f):
	default:
		s.log.Warnf("influx queue full, dropping point at %s", snap.LastUpdated.Format(time.RFC3339Nano))
	}
}

// Run writes queued points until ctx is done, then closes the client.
func (s *InfluxSink) Run(ctx context.Context) {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-s.queue:
			wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := s.writeAPI.WritePoint(wctx, p); err != nil {
				s.log.Errorf("influx write: %v", err)
			}
			cancel()
		}
	}
}

func (s *InfluxSink) Close() {
	s.closeOnce.Do(s.client.Close)
}

func statePoint(snap simulation.Snapshot, f simulation.Flows) *write.Point {
	return write.NewPointWithMeasurement(influxMeasurement).
		AddTag("mode", string(f.Mode)).
		AddField("grid_kw", round3(snap.Power.Grid)).
		AddField("solar_kw", round3(snap.Power.Solar)).
		AddField("battery_kw", round3(snap.Power.Battery)).
		AddField("load_kw", round3(snap.Power.Load)).
		AddField("soc", round3(snap.KPIs.BatterySOC)).
		AddField("energy_today_kwh", round3(snap.KPIs.EnergyToday)).
		AddField("peak_power_kw", round3(snap.KPIs.PeakPowerToday)).
		AddField("cost_savings", round3(snap.KPIs.CostSavings)).
		AddField("carbon_avoided_kg", round3(snap.KPIs.CarbonAvoided)).
		SetTime(snap.LastUpdated)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
