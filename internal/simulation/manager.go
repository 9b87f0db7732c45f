package simulation

import (
	"fmt"
	"sync"
	"time"

	"ems-mock/internal/logger"
	"ems-mock/internal/model"
)

// Settings tunes the state manager. Zero values fall back to defaults.
type Settings struct {
	// MinAdvance is the elapsed time a read must exceed before the model
	// advances.
	MinAdvance    time.Duration
	ChartCapacity int
	InitialSOC    float64
	ActiveSites   int
	Battery       model.BatteryParams
}

// DefaultSettings returns the settings of the reference model.
func DefaultSettings() Settings {
	return Settings{
		MinAdvance:    100 * time.Millisecond,
		ChartCapacity: DefaultChartCapacity,
		InitialSOC:    75.0,
		ActiveSites:   6,
		Battery:       model.DefaultBatteryParams(),
	}
}

func (s *Settings) setDefaults() {
	d := DefaultSettings()
	if s.MinAdvance <= 0 {
		s.MinAdvance = d.MinAdvance
	}
	if s.ChartCapacity <= 0 {
		s.ChartCapacity = d.ChartCapacity
	}
	if s.InitialSOC == 0 {
		s.InitialSOC = d.InitialSOC
	}
	if s.ActiveSites == 0 {
		s.ActiveSites = d.ActiveSites
	}
	if s.Battery == (model.BatteryParams{}) {
		s.Battery = d.Battery
	}
}

// State is the mutable simulation state. Only the Manager touches it.
type State struct {
	Power       model.PowerFlow
	KPIs        model.KPIs
	Charts      map[model.Series]*ChartBuffer
	LastUpdated time.Time
}

func newState(s Settings, now time.Time) *State {
	charts := make(map[model.Series]*ChartBuffer, len(model.AllSeries))
	for _, series := range model.AllSeries {
		charts[series] = NewChartBuffer(s.ChartCapacity)
	}
	return &State{
		KPIs: model.KPIs{
			BatterySOC:  s.InitialSOC,
			ActiveSites: s.ActiveSites,
		},
		Charts:      charts,
		LastUpdated: now,
	}
}

// Snapshot is a read-only copy of the state handed to readers.
type Snapshot struct {
	Power       model.PowerFlow
	KPIs        model.KPIs
	Charts      map[model.Series][]model.ChartPoint
	LastUpdated time.Time
	// Advances counts how many times the model has stepped.
	Advances uint64
}

func (st *State) snapshot(advances uint64) Snapshot {
	charts := make(map[model.Series][]model.ChartPoint, len(st.Charts))
	for k, b := range st.Charts {
		charts[k] = b.Points()
	}
	return Snapshot{
		Power:       st.Power,
		KPIs:        st.KPIs,
		Charts:      charts,
		LastUpdated: st.LastUpdated,
		Advances:    advances,
	}
}

// Observer is notified after every advance.
type Observer interface {
	OnAdvance(s Snapshot, f Flows)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Snapshot, f Flows)

func (fn ObserverFunc) OnAdvance(s Snapshot, f Flows) { fn(s, f) }

// Manager owns the single simulation state. Reads advance the model when
// enough wall-clock time has passed; the check and the advance happen under
// one lock so a delta is never applied twice.
type Manager struct {
	mu       sync.Mutex
	clock    Clock
	settings Settings
	log      logger.Logger

	state    *State
	advances uint64

	obsMu     sync.RWMutex
	observers []Observer

	// notifyMu is taken before mu is released so observers see advances
	// in order.
	notifyMu sync.Mutex
}

// NewManager builds a manager. The state itself is created on first access.
func NewManager(clock Clock, settings Settings, log logger.Logger) (*Manager, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	settings.setDefaults()
	if _, err := model.NewBattery(settings.Battery, settings.InitialSOC); err != nil {
		return nil, fmt.Errorf("battery settings invalid: %w", err)
	}
	return &Manager{
		clock:    clock,
		settings: settings,
		log:      log,
	}, nil
}

// AddObserver registers o for future advances. Observers are called one at
// a time in advance order and must not call State.
func (m *Manager) AddObserver(o Observer) {
	m.obsMu.Lock()
	defer m.obsMu.Unlock()
	m.observers = append(m.observers, o)
}

// Settings returns the effective settings.
func (m *Manager) Settings() Settings { return m.settings }

// State returns the current state, advancing the model once if more than
// MinAdvance has elapsed since the last update.
func (m *Manager) State() Snapshot {
	m.mu.Lock()
	now := m.clock.Now()
	if m.state == nil {
		m.state = newState(m.settings, now)
		m.log.Infof("simulation state initialized, soc=%.1f", m.settings.InitialSOC)
	}

	elapsed := now.Sub(m.state.LastUpdated)
	if elapsed <= m.settings.MinAdvance {
		snap := m.state.snapshot(m.advances)
		m.mu.Unlock()
		return snap
	}

	deltaMS := float64(elapsed) / float64(time.Millisecond)
	flows := Step(m.state, m.settings.Battery, now, deltaMS)
	m.advances++
	snap := m.state.snapshot(m.advances)
	m.notifyMu.Lock()
	m.mu.Unlock()
	defer m.notifyMu.Unlock()

	m.log.Debugw("simulation advanced", map[string]any{
		"delta_ms": deltaMS,
		"grid":     snap.Power.Grid,
		"solar":    snap.Power.Solar,
		"battery":  snap.Power.Battery,
		"load":     snap.Power.Load,
		"soc":      snap.KPIs.BatterySOC,
	})
	m.notify(snap, flows)
	return snap
}

func (m *Manager) notify(s Snapshot, f Flows) {
	m.obsMu.RLock()
	defer m.obsMu.RUnlock()
	for _, o := range m.observers {
		o.OnAdvance(s, f)
	}
}
