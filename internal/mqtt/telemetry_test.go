package mqtt

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ayushchinmay/weatherstation/internal/sensor"
)

func newDiscoveredClient(t *testing.T, w *fakeWire, now time.Time) *Client {
	t.Helper()
	c := newTestClient(w)
	connectClient(t, w, c, now)
	c.Discovered()
	w.publishes = nil
	return c
}

func TestTelemetry_StatePayloadRounding(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	w := newFakeWire()
	c := newDiscoveredClient(t, w, now)
	tel := NewTelemetryPublisher(c, testTopics, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tel.Publish(now, sensor.NewReading(21.34, 55.27, 1013.62))

	if len(w.publishes) != 1 {
		t.Fatalf("publishes = %v, want one state message", w.publishes)
	}
	got := w.publishes[0]
	if got.topic != "pc_xiaoc3_weather/state" {
		t.Errorf("topic = %q, want %q", got.topic, "pc_xiaoc3_weather/state")
	}
	if !got.retained {
		t.Error("state message not retained")
	}
	want := `{"temperature":21.3,"humidity":55.3,"pressure":1013.6}`
	if got.payload != want {
		t.Errorf("payload = %s, want %s", got.payload, want)
	}
}

func TestTelemetry_GatedOnDiscoveredSession(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	w := newFakeWire()
	c := newTestClient(w)
	tel := NewTelemetryPublisher(c, testTopics, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	reading := sensor.NewReading(21.0, 50.0, 1013.0)

	// Disconnected: nothing goes out and the cadence is not consumed.
	tel.Publish(now, reading)
	if len(w.publishes) != 0 {
		t.Fatalf("published %v while disconnected", w.publishes)
	}

	// Connected but undiscovered: still withheld.
	connectClient(t, w, c, now)
	w.publishes = nil
	tel.Publish(now.Add(time.Millisecond), reading)
	if len(w.publishes) != 0 {
		t.Fatalf("published %v before discovery", w.publishes)
	}

	// Discovery completes: the very next evaluation publishes, without
	// waiting out a period.
	c.Discovered()
	tel.Publish(now.Add(2*time.Millisecond), reading)
	if len(w.publishes) != 1 {
		t.Errorf("publishes after discovery = %d, want 1", len(w.publishes))
	}
}

func TestTelemetry_CadenceRateLimits(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	w := newFakeWire()
	c := newDiscoveredClient(t, w, now)
	tel := NewTelemetryPublisher(c, testTopics, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	reading := sensor.NewReading(21.0, 50.0, 1013.0)

	tel.Publish(now, reading)
	tel.Publish(now.Add(5*time.Second), reading)
	if len(w.publishes) != 1 {
		t.Fatalf("publishes inside one period = %d, want 1", len(w.publishes))
	}

	tel.Publish(now.Add(10*time.Second), reading)
	if len(w.publishes) != 2 {
		t.Errorf("publishes after a full period = %d, want 2", len(w.publishes))
	}
}

func TestTelemetry_InvalidReadingWithheld(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	w := newFakeWire()
	c := newDiscoveredClient(t, w, now)
	tel := NewTelemetryPublisher(c, testTopics, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tel.Publish(now, sensor.Invalid())
	if len(w.publishes) != 0 {
		t.Errorf("published %v for an invalid reading", w.publishes)
	}

	// The fault consumed its slot; the next valid reading goes out on
	// the following period with no backlog.
	tel.Publish(now.Add(10*time.Second), sensor.NewReading(21.0, 50.0, 1013.0))
	if len(w.publishes) != 1 {
		t.Errorf("publishes = %d, want 1", len(w.publishes))
	}
}
