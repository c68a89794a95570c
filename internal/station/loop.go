package station

import (
	"context"
	"log/slog"
	"time"

	"github.com/ayushchinmay/weatherstation/internal/sensor"
)

// Link maintains the wireless uplink. Maintain is a no-op while the
// link is up and rate-limits reassociation attempts while it is down.
type Link interface {
	Maintain(now time.Time)
	Up() bool
}

// Broker maintains the MQTT session. Maintain drives connection
// establishment; Service processes inbound protocol traffic and must
// run every iteration the link is up.
type Broker interface {
	Maintain(now time.Time)
	Service()
}

// Discovery announces the station's measurement channels. Publish is a
// no-op unless the session has connected and not yet announced.
type Discovery interface {
	Publish()
}

// Telemetry publishes the latest reading on its own cadence.
type Telemetry interface {
	Publish(now time.Time, latest sensor.Reading)
}

// Presenter renders the latest reading, or its fault, locally.
type Presenter interface {
	Render(r sensor.Reading)
}

// Scheduler owns the control loop. It is single-threaded: every
// collaborator is invoked from Run's goroutine only, and the latest
// Reading is passed by value, so no shared mutable state exists.
//
// Iteration order is fixed: link maintenance, then broker
// maintenance/service, then the independently-clocked activities
// (sample, render, discovery, telemetry). Each later stage's
// precondition is established by an earlier stage in the same or a
// prior iteration.
type Scheduler struct {
	link      Link
	broker    Broker
	discovery Discovery
	telemetry Telemetry
	source    sensor.Source
	presenter Presenter
	logger    *slog.Logger

	sample *Cadence
	render *Cadence

	// now is replaceable in tests.
	now func() time.Time
	// tick bounds how often the loop wakes up.
	tick time.Duration

	latest sensor.Reading
}

// Options configures a Scheduler.
type Options struct {
	Link           Link
	Broker         Broker
	Discovery      Discovery
	Telemetry      Telemetry
	Source         sensor.Source
	Presenter      Presenter
	Logger         *slog.Logger
	SampleInterval time.Duration
	RenderInterval time.Duration
}

// New creates a Scheduler. All collaborators are required.
func New(opts Options) *Scheduler {
	return &Scheduler{
		link:      opts.Link,
		broker:    opts.Broker,
		discovery: opts.Discovery,
		telemetry: opts.Telemetry,
		source:    opts.Source,
		presenter: opts.Presenter,
		logger:    opts.Logger,
		sample:    NewCadence(opts.SampleInterval),
		render:    NewCadence(opts.RenderInterval),
		now:       time.Now,
		tick:      10 * time.Millisecond,
		latest:    sensor.Invalid(),
	}
}

// Tick runs one loop iteration. No call inside it blocks beyond the
// collaborators' own bounded I/O; an individual activity's failure is
// contained by that collaborator and never aborts the iteration.
func (s *Scheduler) Tick() {
	now := s.now()

	s.link.Maintain(now)
	if s.link.Up() {
		s.broker.Maintain(now)
		s.broker.Service()
	}

	if s.sample.Fire(now) {
		s.latest = s.source.Read()
	}

	if s.render.Fire(now) {
		s.logger.Debug("reading", "value", s.latest.String())
		s.presenter.Render(s.latest)
	}

	s.discovery.Publish()
	s.telemetry.Publish(now, s.latest)
}

// Run iterates until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
