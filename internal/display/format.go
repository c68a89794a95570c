// Package display renders readings and status text on the station's
// SSD1306 OLED.
package display

import (
	"fmt"

	"github.com/ayushchinmay/weatherstation/internal/sensor"
)

// line is one row of the local readout. Big lines render at double
// size.
type line struct {
	text string
	big  bool
}

// formatReading lays out the portrait readout, label above value,
// matching the station's panel layout. Invalid readings never render
// as numbers; they get the error screen instead.
func formatReading(r sensor.Reading) []line {
	if !r.Valid {
		return []line{{text: "Sensor"}, {text: "error"}}
	}
	return []line{
		{text: "Humid:"},
		{text: fmt.Sprintf("%.1f%%", r.HumidityPct), big: true},
		{},
		{text: "Temp:"},
		{text: fmt.Sprintf("%.1fC", r.TemperatureC), big: true},
		{},
		{text: "Press:"},
		{text: fmt.Sprintf("%.0f", r.PressureHPa), big: true},
		{text: "hPa"},
	}
}
