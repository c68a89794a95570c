// Package station runs the cooperative control loop that interleaves
// sampling, rendering, link maintenance, and telemetry publication
// without letting any activity block another.
package station

import "time"

// Cadence tracks one periodic activity by its last fire time. The zero
// value has never fired and is due immediately, so the first loop
// iteration performs every activity once instead of waiting out a full
// period.
type Cadence struct {
	period time.Duration
	last   time.Time
}

// NewCadence returns a Cadence with the given period, due immediately.
func NewCadence(period time.Duration) *Cadence {
	return &Cadence{period: period}
}

// Due reports whether the activity should fire at now.
func (c *Cadence) Due(now time.Time) bool {
	return c.last.IsZero() || now.Sub(c.last) >= c.period
}

// Fire marks the activity as fired at now if it is due, and reports
// whether it did.
func (c *Cadence) Fire(now time.Time) bool {
	if !c.Due(now) {
		return false
	}
	c.last = now
	return true
}

// Period returns the configured period.
func (c *Cadence) Period() time.Duration { return c.period }
