// Package publish mirrors the live EMS views onto MQTT topics.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"ems-mock/internal/ems"
	"ems-mock/internal/logger"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
	tokenTimeout  = 5 * time.Second
)

// Config defines the broker connection and the publishing cadence.
type Config struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
	Retain      bool
	Interval    time.Duration
}

// Source supplies the views that get published.
type Source interface {
	LiveTelemetry() ems.LiveTelemetry
	KPIs() ems.KPIReport
	Alerts() []ems.Alert
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher pushes telemetry, KPIs and alerts at a fixed interval.
type Publisher struct {
	cli pahoClient
	cfg Config
	src Source
	log logger.Logger

	closeOnce sync.Once
}

// NewPublisher connects to the broker. The connection announces itself on
// the status topic and leaves an "offline" will behind.
func NewPublisher(cfg Config, src Source, log logger.Logger) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker is required")
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "ems"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	opts := NewClientOptions(cfg)
	opts.OnConnect = func(_ paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(tokenTimeout) {
		return nil, errors.New("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	p := &Publisher{cli: c, cfg: cfg, src: src, log: log}
	if err := p.publish(StatusTopic(cfg.TopicPrefix), true, []byte(statusOnline)); err != nil {
		log.Warnf("publish status: %v", err)
	}
	return p, nil
}

// NewClientOptions builds paho options from cfg. An empty client id gets a
// random one.
func NewClientOptions(cfg Config) *paho.ClientOptions {
	id := cfg.ClientID
	if id == "" {
		id = "ems-mock-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(id)
	opts.AutoReconnect = true
	opts.SetConnectTimeout(tokenTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetWill(StatusTopic(cfg.TopicPrefix), statusOffline, cfg.QoS, true)
	return opts
}

// Run publishes on every tick until ctx is done, then closes the publisher.
func (p *Publisher) Run(ctx context.Context) {
	defer p.Close()
	t := time.NewTicker(p.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := p.PublishOnce(); err != nil {
				p.log.Warnf("mqtt publish: %v", err)
			}
		}
	}
}

// PublishOnce sends the live telemetry, KPIs and alerts. It keeps going
// after a failed topic and returns the errors joined.
func (p *Publisher) PublishOnce() error {
	if !p.cli.IsConnected() {
		return errors.New("mqtt client not connected")
	}
	prefix := p.cfg.TopicPrefix
	var errs []error
	for _, m := range []struct {
		topic   string
		payload any
	}{
		{LiveTopic(prefix), p.src.LiveTelemetry()},
		{KPIsTopic(prefix), p.src.KPIs()},
		{AlertsTopic(prefix), p.src.Alerts()},
	} {
		raw, err := json.Marshal(m.payload)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.topic, err))
			continue
		}
		if err := p.publish(m.topic, p.cfg.Retain, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.topic, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) publish(topic string, retain bool, payload []byte) error {
	token := p.cli.Publish(topic, p.cfg.QoS, retain, payload)
	if !token.WaitTimeout(tokenTimeout) {
		return errors.New("publish timed out")
	}
	return token.Error()
}

// Close marks the publisher offline and disconnects.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.cli.IsConnected() {
			if err := p.publish(StatusTopic(p.cfg.TopicPrefix), true, []byte(statusOffline)); err != nil {
				p.log.Warnf("publish status: %v", err)
			}
		}
		p.cli.Disconnect(250)
	})
}
