package mqtt

import (
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/ayushchinmay/weatherstation/internal/sensor"
	"github.com/ayushchinmay/weatherstation/internal/station"
)

// TelemetryPublisher serializes the latest reading and publishes it
// retained on the shared state topic, on its own cadence.
type TelemetryPublisher struct {
	client  *Client
	topics  Topics
	cadence *station.Cadence
	logger  *slog.Logger
}

// statePayload is the wire contract for the state topic: all three
// fields, one decimal place.
type statePayload struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
}

// NewTelemetryPublisher creates a publisher firing at most once per
// interval.
func NewTelemetryPublisher(client *Client, topics Topics, interval time.Duration, logger *slog.Logger) *TelemetryPublisher {
	return &TelemetryPublisher{
		client:  client,
		topics:  topics,
		cadence: station.NewCadence(interval),
		logger:  logger,
	}
}

// Publish sends the latest reading if the cadence is due. It requires
// a fully discovered session so consumers always see channel metadata
// before state; until then the cadence stays unmarked and the first
// state publish happens right after discovery completes. An invalid
// reading consumes its slot but is withheld: NaN never goes out as a
// literal value, and the next valid reading supersedes it with no
// backlog.
func (t *TelemetryPublisher) Publish(now time.Time, latest sensor.Reading) {
	if t.client.Session() != ConnectedDiscovered {
		return
	}
	if !t.cadence.Fire(now) {
		return
	}
	if !latest.Valid {
		t.logger.Debug("withholding invalid reading")
		return
	}

	payload, err := json.Marshal(statePayload{
		Temperature: round1(latest.TemperatureC),
		Humidity:    round1(latest.HumidityPct),
		Pressure:    round1(latest.PressureHPa),
	})
	if err != nil {
		t.logger.Warn("marshal state payload failed", "error", err)
		return
	}

	if err := t.client.PublishRetained(t.topics.State(), payload); err != nil {
		t.logger.Warn("state publish failed", "error", err)
		return
	}
	t.logger.Debug("state published", "payload", string(payload))
}

// round1 rounds to the state schema's one-decimal precision.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
