package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBattery(t *testing.T, soc float64) *Battery {
	t.Helper()
	b, err := NewBattery(DefaultBatteryParams(), soc)
	require.NoError(t, err)
	return b
}

func TestControl_ChargesOnSurplus(t *testing.T) {
	b := newTestBattery(t, 50)

	res := b.Control(10, 1)

	assert.InDelta(t, 8.0, res.PowerKW, 1e-9)
	// 8 kWh over one hour, /100 * 2
	assert.InDelta(t, 50.16, res.SOCEnd, 1e-9)
	assert.Equal(t, 50.0, res.SOCStart)
}

func TestControl_CapsPower(t *testing.T) {
	b := newTestBattery(t, 50)

	res := b.Control(100, 0)
	assert.Equal(t, 25.0, res.PowerKW)

	res = b.Control(-100, 0)
	assert.Equal(t, -25.0, res.PowerKW)
}

func TestControl_DischargesOnDeficit(t *testing.T) {
	b := newTestBattery(t, 50)

	res := b.Control(-20, 0.5)

	assert.InDelta(t, -16.0, res.PowerKW, 1e-9)
	assert.InDelta(t, 50-0.16, res.SOCEnd, 1e-9)
}

func TestControl_IdleInsideDeadband(t *testing.T) {
	b := newTestBattery(t, 50)

	for _, net := range []float64{5, -5, 0, 4.99, -4.99} {
		res := b.Control(net, 1)
		assert.Equal(t, 0.0, res.PowerKW, "net=%v", net)
		assert.Equal(t, 50.0, res.SOCEnd, "net=%v", net)
	}
}

func TestControl_RespectsCeilingAndFloor(t *testing.T) {
	full := newTestBattery(t, 95)
	assert.Equal(t, 0.0, full.Control(40, 1).PowerKW)

	empty := newTestBattery(t, 15)
	assert.Equal(t, 0.0, empty.Control(-40, 1).PowerKW)
}

func TestControl_ClampsSOC(t *testing.T) {
	b := newTestBattery(t, 94)
	res := b.Control(40, 1000)
	assert.Equal(t, 100.0, res.SOCEnd)

	b = newTestBattery(t, 16)
	res = b.Control(-40, 1000)
	assert.Equal(t, 10.0, res.SOCEnd)
}

func TestNewBattery_Validate(t *testing.T) {
	_, err := NewBattery(DefaultBatteryParams(), 5)
	assert.Error(t, err)

	p := DefaultBatteryParams()
	p.Efficiency = 0
	_, err = NewBattery(p, 50)
	assert.Error(t, err)

	p = DefaultBatteryParams()
	p.ChargeCeilingSOC = 101
	_, err = NewBattery(p, 50)
	assert.Error(t, err)
}

func TestModeFromPowerKW(t *testing.T) {
	assert.Equal(t, ModeCharging, ModeFromPowerKW(3))
	assert.Equal(t, ModeDischarging, ModeFromPowerKW(-3))
	assert.Equal(t, ModeIdle, ModeFromPowerKW(0))
}
