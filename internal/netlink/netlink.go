// Package netlink maintains the wireless uplink by polling the
// transport's association state and rate-limiting reassociation.
package netlink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ayushchinmay/weatherstation/internal/station"
)

// Status is the uplink state as seen by the rest of the station.
type Status int

const (
	Down Status = iota
	Connecting
	Up
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case Down:
		return "down"
	case Connecting:
		return "connecting"
	case Up:
		return "up"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Transport is the narrow surface of the wireless stack. Associate
// triggers reassociation and returns without waiting for the handshake;
// Associated reports whether the link currently carries traffic.
type Transport interface {
	Associate() error
	Associated() (bool, error)
}

// Backoff is the startup bring-up schedule: bounded attempts with
// exponentially growing delays. After the schedule is exhausted the
// loop's rate-limited maintenance takes over.
type Backoff struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxAttempts  int
}

// DefaultBackoff returns the startup schedule: 500ms, 1s, 2s, 4s, ...
// capped at 8s, with 10 attempts.
func DefaultBackoff() Backoff {
	return Backoff{
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  10,
	}
}

// Manager owns the uplink lifecycle. All methods are called from the
// control loop's goroutine; there is no internal locking.
type Manager struct {
	transport Transport
	retry     *station.Cadence
	logger    *slog.Logger

	// associating is set after Associate fires and cleared once the
	// link comes up or an Associate call fails. While the link stays
	// down the manager keeps retrying each window and the status reads
	// Connecting.
	associating bool
}

// NewManager creates a Manager that retries association no more often
// than retryInterval.
func NewManager(transport Transport, retryInterval time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		transport: transport,
		retry:     station.NewCadence(retryInterval),
		logger:    logger,
	}
}

// Status polls the transport and reports the uplink state. Loss of an
// established link is detected here, by polling; the transport never
// pushes disconnect notifications.
func (m *Manager) Status() Status {
	up, err := m.transport.Associated()
	if err != nil {
		m.logger.Warn("link status poll failed", "error", err)
		return Down
	}
	if up {
		m.associating = false
		return Up
	}
	if m.associating {
		return Connecting
	}
	return Down
}

// Up reports whether the link carries traffic.
func (m *Manager) Up() bool {
	return m.Status() == Up
}

// Maintain is a no-op while the link is up. When it is down, it
// triggers reassociation, but only once per retry window so a flapping
// link cannot produce a retry storm.
func (m *Manager) Maintain(now time.Time) {
	status := m.Status()
	if status == Up {
		return
	}
	if !m.retry.Fire(now) {
		return
	}

	m.logger.Info("link down, reassociating")
	m.associating = true
	if err := m.transport.Associate(); err != nil {
		m.logger.Warn("link reassociation failed", "error", err)
		m.associating = false
	}
}

// Connect performs the one-time blocking bring-up before the control
// loop starts. It follows the backoff schedule and gives up after the
// bounded attempt count; a down link at startup is not fatal, it just
// defers to the loop's maintenance.
func (m *Manager) Connect(ctx context.Context, backoff Backoff) error {
	delay := backoff.InitialDelay
	for attempt := 1; attempt <= backoff.MaxAttempts; attempt++ {
		if up, err := m.transport.Associated(); err == nil && up {
			m.logger.Info("link up", "after_attempts", attempt)
			return nil
		}

		if err := m.transport.Associate(); err != nil {
			m.logger.Debug("link association attempt failed",
				"attempt", attempt, "error", err)
		}

		if attempt == backoff.MaxAttempts {
			break
		}
		if !sleepCtx(ctx, delay) {
			return ctx.Err()
		}
		delay = time.Duration(float64(delay) * backoff.Multiplier)
		if delay > backoff.MaxDelay {
			delay = backoff.MaxDelay
		}
	}

	m.logger.Warn("link still down after startup attempts, continuing",
		"attempts", backoff.MaxAttempts)
	return nil
}

// sleepCtx sleeps for d or until ctx is cancelled. Returns false if cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
