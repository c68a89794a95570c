// Package sensor models environmental samples and the BME280 source that
// produces them.
package sensor

import (
	"fmt"
	"math"
)

// Reading is one environmental sample. It is immutable once produced;
// the next sampling tick supersedes it with a fresh value. A Reading
// travels by value, so the render path and the publish path never share
// a mutable reference.
type Reading struct {
	TemperatureC float64
	HumidityPct  float64
	PressureHPa  float64
	// Valid is false when any field carried the sensor's NaN fault
	// sentinel. Invalid readings are never published or rendered as
	// numbers.
	Valid bool
}

// NewReading builds a Reading from raw samples, deriving Valid from the
// NaN fault sentinel.
func NewReading(temperatureC, humidityPct, pressureHPa float64) Reading {
	return Reading{
		TemperatureC: temperatureC,
		HumidityPct:  humidityPct,
		PressureHPa:  pressureHPa,
		Valid: !math.IsNaN(temperatureC) &&
			!math.IsNaN(humidityPct) &&
			!math.IsNaN(pressureHPa),
	}
}

// Invalid returns the fault Reading: all fields NaN, Valid false.
func Invalid() Reading {
	return Reading{
		TemperatureC: math.NaN(),
		HumidityPct:  math.NaN(),
		PressureHPa:  math.NaN(),
	}
}

// String returns a one-line summary for logging.
func (r Reading) String() string {
	if !r.Valid {
		return "invalid reading"
	}
	return fmt.Sprintf("%.1f°C %.1f%% %.1fhPa", r.TemperatureC, r.HumidityPct, r.PressureHPa)
}
