package simulation

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ems-mock/internal/model"
)

var noon = time.Date(2024, 11, 21, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, start time.Time) (*Manager, *ManualClock) {
	t.Helper()
	clock := NewManualClock(start)
	m, err := NewManager(clock, DefaultSettings(), nil)
	require.NoError(t, err)
	return m, clock
}

func TestManager_InitialState(t *testing.T) {
	m, _ := newTestManager(t, noon)

	s := m.State()

	assert.Equal(t, model.PowerFlow{}, s.Power)
	assert.Equal(t, 75.0, s.KPIs.BatterySOC)
	assert.Equal(t, 6, s.KPIs.ActiveSites)
	assert.Zero(t, s.KPIs.EnergyToday)
	assert.Equal(t, noon, s.LastUpdated)
	assert.Equal(t, uint64(0), s.Advances)
	for _, series := range model.AllSeries {
		assert.NotNil(t, s.Charts[series])
		assert.Empty(t, s.Charts[series])
	}
}

func TestManager_NoAdvanceWithin100ms(t *testing.T) {
	m, clock := newTestManager(t, noon)
	m.State()

	clock.Advance(200 * time.Millisecond)
	first := m.State()
	require.Equal(t, uint64(1), first.Advances)

	clock.Advance(50 * time.Millisecond)
	second := m.State()
	clock.Advance(50 * time.Millisecond)
	third := m.State()

	assert.Equal(t, first.Power, second.Power)
	assert.Equal(t, first.KPIs, second.KPIs)
	assert.Equal(t, first.Power, third.Power)
	assert.Equal(t, uint64(1), third.Advances)
}

func TestManager_AdvancesOncePerWindow(t *testing.T) {
	m, clock := newTestManager(t, noon)
	m.State()

	clock.Advance(time.Second)
	for i := 0; i < 10; i++ {
		m.State()
	}
	s := m.State()

	assert.Equal(t, uint64(1), s.Advances)
	assert.Equal(t, noon.Add(time.Second), s.LastUpdated)
	assert.Len(t, s.Charts[model.SeriesGrid], 1)
}

func TestManager_ConcurrentReadersAdvanceOnce(t *testing.T) {
	m, clock := newTestManager(t, noon)
	m.State()
	clock.Advance(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.State()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(1), m.State().Advances)
}

func TestManager_SOCStaysInBounds(t *testing.T) {
	deltas := []time.Duration{
		101 * time.Millisecond,
		time.Second,
		time.Minute,
		time.Hour,
		24 * time.Hour,
		30 * 24 * time.Hour,
	}
	for _, start := range []time.Time{noon, noon.Add(-10 * time.Hour)} {
		m, clock := newTestManager(t, start)
		m.State()
		for _, d := range deltas {
			clock.Advance(d)
			s := m.State()
			assert.GreaterOrEqual(t, s.KPIs.BatterySOC, 10.0)
			assert.LessOrEqual(t, s.KPIs.BatterySOC, 100.0)
		}
	}
}

func TestManager_AccumulatorsNonDecreasing(t *testing.T) {
	m, clock := newTestManager(t, noon.Add(-12*time.Hour))
	prev := m.State().KPIs

	for i := 0; i < 500; i++ {
		clock.Advance(3 * time.Minute)
		cur := m.State().KPIs
		assert.GreaterOrEqual(t, cur.EnergyToday, prev.EnergyToday)
		assert.GreaterOrEqual(t, cur.PeakPowerToday, prev.PeakPowerToday)
		assert.GreaterOrEqual(t, cur.CostSavings, prev.CostSavings)
		assert.GreaterOrEqual(t, cur.CarbonAvoided, prev.CarbonAvoided)
		prev = cur
	}
	assert.Positive(t, prev.EnergyToday)
	assert.Positive(t, prev.CostSavings)
}

func TestManager_ChartBuffersBounded(t *testing.T) {
	m, clock := newTestManager(t, noon)
	m.State()

	var firstKept time.Time
	for i := 0; i < 150; i++ {
		clock.Advance(time.Second)
		m.State()
		if i == 50 {
			firstKept = clock.Now()
		}
	}
	s := m.State()

	for _, series := range model.AllSeries {
		points := s.Charts[series]
		require.Len(t, points, 100)
		assert.Equal(t, firstKept, points[0].Timestamp)
		assert.Equal(t, clock.Now(), points[99].Timestamp)
		for i := 1; i < len(points); i++ {
			assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
		}
	}
}

func TestManager_ChartValuesMatchPower(t *testing.T) {
	m, clock := newTestManager(t, noon)
	m.State()
	clock.Advance(time.Second)
	s := m.State()

	for _, series := range model.AllSeries {
		require.Len(t, s.Charts[series], 1)
		assert.Equal(t, s.Power.Get(series), s.Charts[series][0].Value)
	}
}

func TestManager_SnapshotIsCopy(t *testing.T) {
	m, clock := newTestManager(t, noon)
	m.State()
	clock.Advance(time.Second)
	s := m.State()
	s.Charts[model.SeriesLoad][0].Value = -1

	assert.NotEqual(t, -1.0, m.State().Charts[model.SeriesLoad][0].Value)
}

func TestManager_NotifiesObservers(t *testing.T) {
	m, clock := newTestManager(t, noon)
	var calls int
	var last Snapshot
	m.AddObserver(ObserverFunc(func(s Snapshot, _ Flows) {
		calls++
		last = s
	}))

	m.State()
	assert.Zero(t, calls)

	clock.Advance(time.Second)
	m.State()
	m.State()
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), last.Advances)
}

func TestManager_ObserversSeeAdvancesInOrder(t *testing.T) {
	m, clock := newTestManager(t, noon)
	var seen []uint64
	m.AddObserver(ObserverFunc(func(s Snapshot, _ Flows) {
		seen = append(seen, s.Advances)
	}))
	m.State()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				clock.Advance(time.Second)
				m.State()
			}
		}()
	}
	wg.Wait()

	final := m.State().Advances
	require.Len(t, seen, int(final))
	for i, adv := range seen {
		assert.Equal(t, uint64(i+1), adv)
	}
}

func TestNewManager_RejectsBadBattery(t *testing.T) {
	s := DefaultSettings()
	s.InitialSOC = 5
	_, err := NewManager(NewManualClock(noon), s, nil)
	assert.Error(t, err)
}

func TestStep_PowerBalance(t *testing.T) {
	for h := 0; h < 24; h++ {
		st := newState(DefaultSettings(), noon)
		now := time.Date(2024, 6, 1, h, 17, 0, 0, time.UTC)
		f := Step(st, model.DefaultBatteryParams(), now, 1000)

		assert.Equal(t, f.Load-f.Solar-f.Battery, f.Grid, "hour %d", h)
		assert.Equal(t, math.Round(f.Grid*100)/100, st.Power.Grid)
	}
}

func TestStep_SolarWindow(t *testing.T) {
	params := model.DefaultBatteryParams()
	for _, tc := range []struct {
		hour, min int
		zero      bool
	}{
		{5, 59, true},
		{6, 0, true}, // envelope is sin(0)
		{6, 30, false},
		{12, 0, false},
		{17, 59, false},
		{18, 1, true},
		{23, 0, true},
		{0, 0, true},
	} {
		st := newState(DefaultSettings(), noon)
		now := time.Date(2024, 6, 1, tc.hour, tc.min, 0, 0, time.UTC)
		f := Step(st, params, now, 1000)
		if tc.zero {
			assert.Equal(t, 0.0, f.Solar, "%02d:%02d", tc.hour, tc.min)
		} else {
			assert.Positive(t, f.Solar, "%02d:%02d", tc.hour, tc.min)
		}
	}
}

func TestSolarFactor(t *testing.T) {
	assert.Equal(t, 0.0, SolarFactor(5.99))
	assert.InDelta(t, 0.0, SolarFactor(6), 1e-12)
	assert.InDelta(t, 1.0, SolarFactor(12), 1e-12)
	assert.InDelta(t, 0.0, SolarFactor(18), 1e-12)
	assert.Equal(t, 0.0, SolarFactor(18.01))
}

func TestStep_MidnightDischarges(t *testing.T) {
	st := newState(DefaultSettings(), noon)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	f := Step(st, model.DefaultBatteryParams(), now, float64(time.Hour/time.Millisecond))

	// No sun and roughly 30-34 kW of load, so the battery discharges.
	assert.Equal(t, model.ModeDischarging, f.Mode)
	assert.Less(t, st.KPIs.BatterySOC, 75.0)
	assert.Positive(t, f.Grid)
}

func TestHourOfDay(t *testing.T) {
	assert.Equal(t, 14.5, HourOfDay(time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)))
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, -0.13, round2(-0.125))
	assert.Equal(t, 1.0, round2(0.999))
}
