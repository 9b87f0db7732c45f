package ems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeather_Noon(t *testing.T) {
	svc, _ := newFixedService(baseSnapshot(), at(12, 0))

	w := svc.Weather()

	assert.Equal(t, "Chennai, Tamil Nadu", w.Location)
	assert.Equal(t, "Chennai", w.City)
	assert.Equal(t, 35.0, w.Current.Temperature)
	assert.Equal(t, 37.0, w.Current.FeelsLike)
	assert.Equal(t, 19, w.Current.CloudCover) // 40.5 of 50 kW expected
	assert.Equal(t, "clear", w.Current.Condition)
	assert.Equal(t, 9, w.Current.UVIndex)
	assert.Equal(t, 867, w.Current.SolarIrradiance)
	assert.Equal(t, 75, w.Current.Humidity)
	assert.Equal(t, "SE", w.Current.WindDirection)

	require.Len(t, w.HourlyForecast, 12)
	assert.Equal(t, "13:00", w.HourlyForecast[0].Hour)
	assert.Equal(t, "00:00", w.HourlyForecast[11].Hour)
	assert.Zero(t, w.HourlyForecast[11].SolarIrradiance)

	assert.Equal(t, at(6, 30), w.Sunrise)
	assert.Equal(t, at(18, 30), w.Sunset)
}

func TestWeather_Night(t *testing.T) {
	snap := baseSnapshot()
	snap.Power.Solar = 0
	svc, _ := newFixedService(snap, at(2, 0))

	w := svc.Weather()

	assert.Zero(t, w.Current.CloudCover)
	assert.Zero(t, w.Current.UVIndex)
	assert.Zero(t, w.Current.SolarIrradiance)
	assert.Equal(t, "clear", w.Current.Condition)
	assert.Equal(t, "03:00", w.HourlyForecast[0].Hour)
}

func TestWeather_Overcast(t *testing.T) {
	snap := baseSnapshot()
	snap.Power.Solar = 5
	svc, _ := newFixedService(snap, at(12, 0))

	w := svc.Weather()

	assert.Equal(t, 90, w.Current.CloudCover)
	assert.Equal(t, "rainy", w.Current.Condition)
	for _, f := range w.HourlyForecast {
		assert.GreaterOrEqual(t, f.CloudCover, 0)
		assert.LessOrEqual(t, f.CloudCover, 100)
	}
}

func TestCondition(t *testing.T) {
	assert.Equal(t, "clear", condition(90, 20))
	assert.Equal(t, "clear", condition(10, 12))
	assert.Equal(t, "partly_cloudy", condition(20, 12))
	assert.Equal(t, "cloudy", condition(50, 12))
	assert.Equal(t, "rainy", condition(80, 12))
}
