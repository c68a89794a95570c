package station

import (
	"testing"
	"time"
)

func TestCadence_FirstEvaluationFiresImmediately(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	for _, period := range []time.Duration{time.Millisecond, time.Second, time.Hour} {
		c := NewCadence(period)
		if !c.Due(now) {
			t.Errorf("period %s: zero-value cadence not due on first evaluation", period)
		}
		if !c.Fire(now) {
			t.Errorf("period %s: zero-value cadence did not fire", period)
		}
	}
}

func TestCadence_NotDueInsidePeriod(t *testing.T) {
	base := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	c := NewCadence(10 * time.Millisecond)

	if !c.Fire(base) {
		t.Fatal("first fire failed")
	}
	if c.Fire(base.Add(9 * time.Millisecond)) {
		t.Error("fired again inside the period")
	}
	if !c.Fire(base.Add(10 * time.Millisecond)) {
		t.Error("did not fire at exactly one period elapsed")
	}
}

func TestCadence_FiringCountOverSimulatedTime(t *testing.T) {
	// Stepping a 1ms clock across T with period P must produce one fire
	// at t=0 plus one per elapsed period: floor(T/P)+1 total, never
	// more.
	tests := []struct {
		period time.Duration
		total  time.Duration
		want   int
	}{
		{10 * time.Millisecond, 100 * time.Millisecond, 11},
		{10 * time.Millisecond, 95 * time.Millisecond, 10},
		{25 * time.Millisecond, 100 * time.Millisecond, 5},
		{time.Second, 100 * time.Millisecond, 1},
	}

	base := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		c := NewCadence(tt.period)
		fires := 0
		for elapsed := time.Duration(0); elapsed <= tt.total; elapsed += time.Millisecond {
			if c.Fire(base.Add(elapsed)) {
				fires++
			}
		}
		if fires != tt.want {
			t.Errorf("period %s over %s: fires = %d, want %d",
				tt.period, tt.total, fires, tt.want)
		}
	}
}

func TestCadence_SlowEvaluationStillRateLimits(t *testing.T) {
	// Evaluating far less often than the period never produces catch-up
	// bursts: one fire per evaluation at most.
	base := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	c := NewCadence(10 * time.Millisecond)

	fires := 0
	for i := 0; i < 5; i++ {
		if c.Fire(base.Add(time.Duration(i) * time.Second)) {
			fires++
		}
	}
	if fires != 5 {
		t.Errorf("fires = %d, want 5 (one per evaluation)", fires)
	}
}
