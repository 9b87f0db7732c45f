package stream

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems-mock/internal/ems"
	"ems-mock/internal/logger"
)

type fakeSource struct {
	mu    sync.Mutex
	reads int
	soc   float64
}

func (f *fakeSource) LiveTelemetry() ems.LiveTelemetry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return ems.LiveTelemetry{GridPower: 10, SolarPower: 40, LoadPower: 55, BatteryPower: 5, BatterySOC: f.soc}
}

func (f *fakeSource) KPIs() ems.KPIReport { return ems.KPIReport{ActiveSites: 6} }

func (f *fakeSource) Alerts() []ems.Alert { return []ems.Alert{} }

func (f *fakeSource) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func dial(t *testing.T, h *Handler) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(h)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestNewEnvelope(t *testing.T) {
	msg, err := NewEnvelope(TypeTelemetryLive, ems.LiveTelemetry{BatterySOC: 75})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, "telemetry:live", env.Type)

	var live ems.LiveTelemetry
	require.NoError(t, json.Unmarshal(env.Payload, &live))
	assert.Equal(t, 75.0, live.BatterySOC)
}

func TestNewEnvelope_NoPayload(t *testing.T) {
	msg, err := NewEnvelope(TypeKPIUpdate, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"kpi:update"}`, string(msg))
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{hub: hub, send: make(chan []byte, 4)}

	hub.Register(c)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	// second unregister is a no-op
	hub.Unregister(c)
}

func TestHub_BroadcastDropsForSlowClient(t *testing.T) {
	hub := NewHub(logger.NopLogger{})
	fast := &Client{hub: hub, send: make(chan []byte, 4)}
	slow := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(fast)
	hub.Register(slow)

	hub.Broadcast([]byte("a"))
	hub.Broadcast([]byte("b"))

	assert.Len(t, fast.send, 2)
	assert.Len(t, slow.send, 1)
	assert.Equal(t, []byte("a"), <-slow.send)
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub(nil)
	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)

	hub.CloseAll()

	assert.Equal(t, 0, hub.ClientCount())
	_, open := <-c.send
	assert.False(t, open)
}

func TestHandler_SendsLiveOnConnect(t *testing.T) {
	src := &fakeSource{soc: 62.5}
	hub := NewHub(nil)
	conn, cleanup := dial(t, NewHandler(hub, src, nil))
	defer cleanup()

	env := readEnvelope(t, conn)
	assert.Equal(t, TypeTelemetryLive, env.Type)

	var live ems.LiveTelemetry
	require.NoError(t, json.Unmarshal(env.Payload, &live))
	assert.Equal(t, 62.5, live.BatterySOC)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestHandler_LiveIsFirstDespiteBroadcasts(t *testing.T) {
	src := &fakeSource{soc: 50}
	hub := NewHub(logger.NopLogger{})
	server := httptest.NewServer(NewHandler(hub, src, nil))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	kpi, err := NewEnvelope(TypeKPIUpdate, ems.KPIReport{})
	require.NoError(t, err)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				hub.Broadcast(kpi)
			}
		}
	}()
	defer close(done)

	for i := 0; i < 10; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		assert.Equal(t, TypeTelemetryLive, readEnvelope(t, conn).Type)
		conn.Close()
	}
}

func TestHandler_CloseAllSendsCloseFrame(t *testing.T) {
	src := &fakeSource{soc: 50}
	hub := NewHub(nil)
	conn, cleanup := dial(t, NewHandler(hub, src, nil))
	defer cleanup()

	assert.Equal(t, TypeTelemetryLive, readEnvelope(t, conn).Type)
	hub.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestPump_Tick(t *testing.T) {
	src := &fakeSource{soc: 70}
	hub := NewHub(nil)
	conn, cleanup := dial(t, NewHandler(hub, src, nil))
	defer cleanup()
	readEnvelope(t, conn) // initial telemetry

	NewPump(hub, src, time.Second, nil).Tick()

	assert.Equal(t, TypeTelemetryLive, readEnvelope(t, conn).Type)
	assert.Equal(t, TypeKPIUpdate, readEnvelope(t, conn).Type)
	alerts := readEnvelope(t, conn)
	assert.Equal(t, TypeAlertsUpdate, alerts.Type)
	assert.JSONEq(t, `[]`, string(alerts.Payload))
}

func TestPump_SkipsWithoutClients(t *testing.T) {
	src := &fakeSource{}
	hub := NewHub(nil)
	p := NewPump(hub, src, 5*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	p.Run(ctx)

	assert.Zero(t, src.readCount())
}

func TestHandler_UnregistersOnClose(t *testing.T) {
	src := &fakeSource{}
	hub := NewHub(nil)
	conn, cleanup := dial(t, NewHandler(hub, src, nil))
	defer cleanup()
	readEnvelope(t, conn)
	require.Equal(t, 1, hub.ClientCount())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
