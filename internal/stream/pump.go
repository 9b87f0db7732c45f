package stream

import (
	"context"
	"time"

	"ems-mock/internal/logger"
)

// Pump periodically reads the views and broadcasts them to the hub.
type Pump struct {
	hub      *Hub
	src      Source
	interval time.Duration
	log      logger.Logger
}

func NewPump(hub *Hub, src Source, interval time.Duration, log logger.Logger) *Pump {
	if interval <= 0 {
		interval = time.Second
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Pump{hub: hub, src: src, interval: interval, log: log}
}

// Run broadcasts on every tick until ctx is done. Ticks with no connected
// client do not read the views.
func (p *Pump) Run(ctx context.Context) {
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if p.hub.ClientCount() == 0 {
				continue
			}
			p.Tick()
		}
	}
}

// Tick broadcasts live telemetry, KPIs and alerts once.
func (p *Pump) Tick() {
	p.broadcast(TypeTelemetryLive, p.src.LiveTelemetry())
	p.broadcast(TypeKPIUpdate, p.src.KPIs())
	p.broadcast(TypeAlertsUpdate, p.src.Alerts())
}

func (p *Pump) broadcast(msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		p.log.Errorf("marshal %s: %v", msgType, err)
		return
	}
	p.hub.Broadcast(msg)
}
