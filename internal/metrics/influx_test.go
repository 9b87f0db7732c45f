package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *capture) add(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies = append(c.bodies, s)
}

func (c *capture) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.bodies...)
}

func TestInfluxSink_WritesStatePoint(t *testing.T) {
	got := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got.add(strings.TrimSpace(string(data)))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "ems"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sink.Run(ctx)
		close(done)
	}()

	snap, flows := sampleSnapshot()
	sink.OnAdvance(snap, flows)

	p := write.NewPointWithMeasurement("ems_state").
		AddTag("mode", "CHARGING").
		AddField("grid_kw", 12.5).
		AddField("solar_kw", 40.0).
		AddField("battery_kw", 8.0).
		AddField("load_kw", 60.5).
		AddField("soc", 76.25).
		AddField("energy_today_kwh", 1.5).
		AddField("peak_power_kw", 60.5).
		AddField("cost_savings", 0.75).
		AddField("carbon_avoided_kg", 1.23).
		SetTime(snap.LastUpdated)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))

	require.Eventually(t, func() bool { return len(got.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, expected, got.all()[0])

	cancel()
	<-done
}

func TestInfluxSink_DropsWhenQueueFull(t *testing.T) {
	sink := NewInfluxSink(InfluxConfig{URL: "http://127.0.0.1:1", Org: "org", Bucket: "ems"})
	defer sink.Close()

	snap, flows := sampleSnapshot()
	for i := 0; i < influxQueueSize+10; i++ {
		sink.OnAdvance(snap, flows)
	}
	assert.Len(t, sink.queue, influxQueueSize)
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(context.Background(), InfluxConfig{
		URL:    srv.URL,
		Token:  "tok",
		Org:    "org",
		Bucket: "ems",
	})
	assert.Nil(t, sink)
	assert.True(t, called)
}
