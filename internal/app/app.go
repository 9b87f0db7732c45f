// Package app assembles the EMS service from configuration: the simulation,
// the HTTP router and the optional metrics, stream and MQTT sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"ems-mock/internal/api"
	"ems-mock/internal/config"
	"ems-mock/internal/ems"
	"ems-mock/internal/logger"
	"ems-mock/internal/metrics"
	"ems-mock/internal/publish"
	"ems-mock/internal/simulation"
	"ems-mock/internal/stream"
)

const shutdownTimeout = 10 * time.Second

// Service owns every long-running component.
type Service struct {
	Manager *simulation.Manager
	EMS     *ems.Service
	Server  *http.Server

	cfg       *config.Config
	log       logger.Logger
	hub       *stream.Hub
	pump      *stream.Pump
	influx    *metrics.InfluxSink
	publisher *publish.Publisher
}

// Options override the clock and Prometheus registry. Zero values use the
// system clock and the default registry.
type Options struct {
	Clock    simulation.Clock
	Registry *prometheus.Registry
}

// New builds a Service from cfg. The MQTT connection and the InfluxDB
// health check happen here; the servers start in Run.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Service, error) {
	logger.SetLevel(cfg.Log.Level)
	log := logger.New("service")
	gin.SetMode(cfg.Server.Mode)

	mgr, err := simulation.NewManager(opts.Clock, cfg.Simulation.ToSimulationSettings(), logger.New("simulation"))
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	tariff, err := cfg.Tariff.ToSchedule()
	if err != nil {
		return nil, fmt.Errorf("tariff: %w", err)
	}
	svc := ems.NewService(mgr, ems.Options{
		Clock:    opts.Clock,
		Tariff:   tariff,
		Sites:    config.ToSites(cfg.Sites),
		Location: cfg.Location.ToLocation(),
		Logger:   logger.New("ems"),
	})

	s := &Service{Manager: mgr, EMS: svc, cfg: cfg, log: log}

	routerOpts := api.Options{
		BasePath:    cfg.Server.BasePath,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger.New("http"),
	}

	if cfg.Metrics.Prometheus {
		var reg prometheus.Registerer = prometheus.DefaultRegisterer
		var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
		if opts.Registry != nil {
			reg, gatherer = opts.Registry, opts.Registry
		}
		prom, err := metrics.NewPromSink(reg)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		mgr.AddObserver(prom)
		routerOpts.Requests = prom
		routerOpts.Metrics = metrics.Handler(gatherer)
		routerOpts.MetricsPath = cfg.Metrics.Path
	}

	if cfg.Influx.Enabled {
		s.influx = metrics.NewInfluxSinkWithFallback(ctx, metrics.InfluxConfig{
			URL:    cfg.Influx.URL,
			Token:  cfg.Influx.Token,
			Org:    cfg.Influx.Org,
			Bucket: cfg.Influx.Bucket,
		})
		if s.influx != nil {
			mgr.AddObserver(s.influx)
		} else {
			log.Warnf("influx unavailable at %s, state points disabled", cfg.Influx.URL)
		}
	}

	if cfg.Stream.Enabled {
		streamLog := logger.New("stream")
		s.hub = stream.NewHub(streamLog)
		s.pump = stream.NewPump(s.hub, svc, time.Duration(cfg.Stream.IntervalMS)*time.Millisecond, streamLog)
		routerOpts.Stream = stream.NewHandler(s.hub, svc, streamLog)
		routerOpts.StreamPath = cfg.Stream.Path
	}

	if cfg.MQTT.Enabled {
		pub, err := publish.NewPublisher(publish.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			QoS:         byte(cfg.MQTT.QoS),
			Retain:      cfg.MQTT.Retain,
			Interval:    time.Duration(cfg.MQTT.IntervalMS) * time.Millisecond,
		}, svc, logger.New("mqtt"))
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		s.publisher = pub
	}

	s.Server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(svc, routerOpts),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Run serves HTTP and runs the background sinks until ctx is cancelled,
// then shuts the server down gracefully.
func (s *Service) Run(ctx context.Context) error {
	if s.influx != nil {
		go s.influx.Run(ctx)
	}
	if s.pump != nil {
		go s.pump.Run(ctx)
	}
	if s.publisher != nil {
		go s.publisher.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("EMS API listening on %s (base path %s)", s.Server.Addr, s.cfg.Server.BasePath)
		if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Infof("shutting down")
	if s.hub != nil {
		s.hub.CloseAll()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close releases the sinks opened by New. It is safe after Run.
func (s *Service) Close() {
	if s.influx != nil {
		s.influx.Close()
	}
	if s.publisher != nil {
		s.publisher.Close()
	}
}
