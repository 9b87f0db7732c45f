package ems

import (
	"fmt"
	"math"
)

const (
	baseTempC        = 30.0
	tempSwingC       = 5.0
	forecastHours    = 12
	solarNameplateKW = 50.0
)

// Weather synthesizes conditions from the clock and the solar output: cloud
// cover is whatever explains the gap between expected and actual PV power.
func (s *Service) Weather() Weather {
	st := s.state.State()
	now := s.clock.Now()
	hour := now.Hour()

	temperature := temperatureAt(hour)

	expectedSolar := 0.0
	if hour >= 6 && hour <= 18 {
		expectedSolar = solarNameplateKW * diurnal(hour)
	}
	cloudCover := 0.0
	if expectedSolar != 0 {
		cloudCover = clamp((1-st.Power.Solar/expectedSolar)*100, 0, 100)
	}

	uv := 0
	if hour >= 6 && hour <= 19 {
		uv = min(11, roundInt((1-cloudCover/100)*8+3))
	}

	forecast := make([]HourlyForecast, 0, forecastHours)
	for i := 1; i <= forecastHours; i++ {
		fh := (hour + i) % 24
		fcc := clamp(cloudCover+math.Sin(float64(i)/3)*20, 0, 100)
		forecast = append(forecast, HourlyForecast{
			Hour:            fmt.Sprintf("%02d:00", fh),
			Temperature:     round(temperatureAt(fh), 1),
			CloudCover:      roundInt(fcc),
			SolarIrradiance: roundInt(solarIrradiance(fh, fcc)),
		})
	}

	return Weather{
		Location:  s.location.Name,
		City:      s.location.City,
		State:     s.location.State,
		Timestamp: now,
		Current: CurrentWeather{
			Temperature:     round(temperature, 1),
			FeelsLike:       round(temperature+2, 1),
			Humidity:        75,
			CloudCover:      roundInt(cloudCover),
			WindSpeed:       15,
			WindDirection:   "SE",
			Condition:       condition(cloudCover, hour),
			SolarIrradiance: roundInt(solarIrradiance(hour, cloudCover)),
			UVIndex:         uv,
		},
		HourlyForecast: forecast,
		Sunrise:        atClock(now, 6, 30),
		Sunset:         atClock(now, 18, 30),
	}
}

// diurnal is sin(pi*(h-6)/12) without the daylight cut-off.
func diurnal(hour int) float64 {
	return math.Sin(float64(hour-6) / 12 * math.Pi)
}

func temperatureAt(hour int) float64 {
	return baseTempC + diurnal(hour)*tempSwingC
}

func condition(cloudCover float64, hour int) string {
	switch {
	case hour < 6 || hour > 19:
		return "clear"
	case cloudCover < 20:
		return "clear"
	case cloudCover < 50:
		return "partly_cloudy"
	case cloudCover < 80:
		return "cloudy"
	default:
		return "rainy"
	}
}

// solarIrradiance is a cosine bell around noon in W/m2, dimmed by clouds.
func solarIrradiance(hour int, cloudCover float64) float64 {
	if hour < 6 || hour > 19 {
		return 0
	}
	angle := float64(hour-12) / 6
	base := 1000 * math.Cos(angle*math.Pi/2)
	cloudFactor := 1 - (cloudCover/100)*0.7
	return math.Max(0, base*cloudFactor)
}
