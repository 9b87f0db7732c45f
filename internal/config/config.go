package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"ems-mock/internal/ems"
	"ems-mock/internal/model"
	"ems-mock/internal/simulation"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nesting levels: EMS_SERVER__PORT=9090 sets server.port.
const EnvPrefix = "EMS_"

// Config is the on-disk configuration shape (YAML or JSON).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
	Tariff     TariffConfig     `yaml:"tariff"`
	Location   LocationConfig   `yaml:"location"`
	// Optional: load the site roster from a separate YAML file.
	// If both SitesFile and Sites are provided, Sites wins.
	SitesFile string        `yaml:"sites_file"`
	Sites     []SiteConfig  `yaml:"sites"`
	Metrics   MetricsConfig `yaml:"metrics"`
	Influx    InfluxConfig  `yaml:"influx"`
	MQTT      MQTTConfig    `yaml:"mqtt"`
	Stream    StreamConfig  `yaml:"stream"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// Mode is the gin mode: debug, release or test.
	Mode        string   `yaml:"mode"`
	BasePath    string   `yaml:"base_path"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type SimulationConfig struct {
	MinAdvanceMS  int           `yaml:"min_advance_ms"`
	ChartCapacity int           `yaml:"chart_capacity"`
	InitialSOC    float64       `yaml:"initial_soc"`
	ActiveSites   int           `yaml:"active_sites"`
	Battery       BatteryConfig `yaml:"battery"`
}

type LocationConfig struct {
	Name  string `yaml:"name"`
	City  string `yaml:"city"`
	State string `yaml:"state"`
}

type MetricsConfig struct {
	Prometheus bool   `yaml:"prometheus"`
	Path       string `yaml:"path"`
}

type InfluxConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Org     string `yaml:"org"`
	Bucket  string `yaml:"bucket"`
}

type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
	IntervalMS  int    `yaml:"interval_ms"`
}

type StreamConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	IntervalMS int    `yaml:"interval_ms"`
}

// Default returns the built-in configuration. Slices are left empty and
// filled by SetDefaults so that file values replace them instead of merging.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:     8080,
			Mode:     "release",
			BasePath: "/api/ems",
		},
		Log: LogConfig{Level: "info"},
		Simulation: SimulationConfig{
			MinAdvanceMS:  100,
			ChartCapacity: simulation.DefaultChartCapacity,
			InitialSOC:    75,
			ActiveSites:   6,
			Battery:       batteryFromModel(model.DefaultBatteryParams()),
		},
		Tariff: TariffConfig{
			Peak:         8.5,
			Normal:       6.2,
			OffPeak:      4.5,
			Export:       3.5,
			DemandCharge: 350,
			FixedCharge:  120,
			TaxRate:      0.18,
		},
		Location: LocationConfig{
			Name:  "Chennai, Tamil Nadu",
			City:  "Chennai",
			State: "Tamil Nadu",
		},
		Metrics: MetricsConfig{Prometheus: true, Path: "/metrics"},
		Influx:  InfluxConfig{Bucket: "ems"},
		MQTT: MQTTConfig{
			TopicPrefix: "ems",
			IntervalMS:  5000,
		},
		Stream: StreamConfig{Enabled: true, Path: "/ws/live", IntervalMS: 1000},
	}
}

// Load reads the config file (if path is not empty), applies EMS_* environment
// overrides, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	c := Default()
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if c.SitesFile != "" && len(c.Sites) == 0 {
		sitesPath := c.SitesFile
		if !filepath.IsAbs(sitesPath) && path != "" {
			// Prefer paths relative to the config file, fall back to cwd.
			cand := filepath.Join(filepath.Dir(path), sitesPath)
			if _, err := os.Stat(cand); err == nil {
				sitesPath = cand
			}
		}
		sites, err := LoadSites(sitesPath)
		if err != nil {
			return nil, err
		}
		c.Sites = sites
	}

	c.SetDefaults()
	return &c, nil
}

// envKey maps EMS_SERVER__PORT to server.port.
func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// SetDefaults fills the list-valued settings left empty.
func (c *Config) SetDefaults() {
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if len(c.Tariff.Windows) == 0 {
		c.Tariff.Windows = DefaultTariffWindows()
	}
	if len(c.Sites) == 0 {
		c.Sites = DefaultSites()
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with '/'")
	}
	if c.Simulation.MinAdvanceMS <= 0 {
		return errors.New("simulation.min_advance_ms must be > 0")
	}
	if c.Simulation.ChartCapacity <= 0 {
		return errors.New("simulation.chart_capacity must be > 0")
	}
	if _, err := model.NewBattery(c.Simulation.Battery.ToModelParams(), c.Simulation.InitialSOC); err != nil {
		return fmt.Errorf("simulation battery config invalid: %w", err)
	}
	if err := c.Tariff.Validate(); err != nil {
		return fmt.Errorf("tariff config invalid: %w", err)
	}
	if err := ValidateSites(c.Sites); err != nil {
		return err
	}
	if c.Influx.Enabled && (c.Influx.URL == "" || c.Influx.Org == "" || c.Influx.Bucket == "") {
		return errors.New("influx.url, influx.org and influx.bucket are required when influx is enabled")
	}
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			return errors.New("mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
		}
		if c.MQTT.IntervalMS <= 0 {
			return errors.New("mqtt.interval_ms must be > 0")
		}
	}
	if c.Stream.Enabled && c.Stream.IntervalMS <= 0 {
		return errors.New("stream.interval_ms must be > 0")
	}
	return nil
}

// ToSimulationSettings maps the simulation section onto manager settings.
func (s SimulationConfig) ToSimulationSettings() simulation.Settings {
	return simulation.Settings{
		MinAdvance:    time.Duration(s.MinAdvanceMS) * time.Millisecond,
		ChartCapacity: s.ChartCapacity,
		InitialSOC:    s.InitialSOC,
		ActiveSites:   s.ActiveSites,
		Battery:       s.Battery.ToModelParams(),
	}
}

func (l LocationConfig) ToLocation() ems.Location {
	return ems.Location{Name: l.Name, City: l.City, State: l.State}
}

// Addr is the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}
