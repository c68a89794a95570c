package mqtt

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ayushchinmay/weatherstation/internal/station"
)

// Session is the broker session state machine. The Client drives
// Disconnected → Connecting → ConnectedUndiscovered; the discovery
// publisher drives ConnectedUndiscovered → ConnectedDiscovered. Any
// detected session loss reverts to Disconnected, which is what forces
// re-announcement on the next connect.
type Session int

const (
	Disconnected Session = iota
	Connecting
	ConnectedUndiscovered
	ConnectedDiscovered
)

// String returns the session state name.
func (s Session) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case ConnectedUndiscovered:
		return "connected-undiscovered"
	case ConnectedDiscovered:
		return "connected-discovered"
	}
	return fmt.Sprintf("session(%d)", int(s))
}

// Connected reports whether the session is established.
func (s Session) Connected() bool { return s >= ConnectedUndiscovered }

// Client drives the session lifecycle from the control loop. All
// methods run on the loop goroutine; there is no internal locking.
type Client struct {
	wire       Wire
	topics     Topics
	retry      *station.Cadence
	pubTimeout time.Duration
	logger     *slog.Logger

	session Session
	connect Token // in-flight dial, non-nil only while Connecting
}

// NewClient creates a Client. Dials are rate-limited to one per
// retryInterval window; publish completion waits are bounded by
// publishTimeout.
func NewClient(wire Wire, topics Topics, retryInterval, publishTimeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		wire:       wire,
		topics:     topics,
		retry:      station.NewCadence(retryInterval),
		pubTimeout: publishTimeout,
		logger:     logger,
	}
}

// Session returns the current session state.
func (c *Client) Session() Session { return c.session }

// Maintain advances the session one non-blocking step. When
// disconnected it starts a dial, at most once per retry window; while
// connecting it polls the in-flight dial; on success it publishes the
// retained "online" birth message and opens the session for discovery.
func (c *Client) Maintain(now time.Time) {
	c.checkAlive()

	switch c.session {
	case Disconnected:
		if !c.retry.Fire(now) {
			return
		}
		c.logger.Info("connecting to broker")
		c.connect = c.wire.Connect()
		c.session = Connecting

	case Connecting:
		if !c.connect.Wait(0) {
			return
		}
		err := c.connect.Error()
		c.connect = nil
		if err != nil {
			c.logger.Warn("broker connect failed", "error", err)
			c.session = Disconnected
			return
		}
		if err := c.PublishRetained(c.topics.Availability(), []byte(PayloadAvailable)); err != nil {
			c.logger.Warn("availability publish failed", "error", err)
		}
		c.session = ConnectedUndiscovered
		c.logger.Info("broker connected")
	}
}

// Service runs the per-iteration inbound obligation. Keep-alives are
// pumped by the wire's own reader; what remains is detecting a
// silently dropped session by polling the transport.
func (c *Client) Service() {
	c.checkAlive()
}

func (c *Client) checkAlive() {
	if c.session.Connected() && !c.wire.Connected() {
		c.logger.Warn("broker session lost")
		c.session = Disconnected
	}
}

// Discovered marks the announcement complete for this session
// instance. Only the discovery publisher calls it.
func (c *Client) Discovered() {
	if c.session == ConnectedUndiscovered {
		c.session = ConnectedDiscovered
	}
}

// PublishRetained publishes a retained message with a bounded
// completion wait.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	tok := c.wire.Publish(topic, payload, true)
	if !tok.Wait(c.pubTimeout) {
		return fmt.Errorf("publish %s: timed out after %s", topic, c.pubTimeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// ConnectWait performs a blocking connection attempt. Only the startup
// reset flow uses it, before the control loop has any telemetry
// obligation.
func (c *Client) ConnectWait(timeout time.Duration) error {
	tok := c.wire.Connect()
	if !tok.Wait(timeout) {
		return fmt.Errorf("broker connect: timed out after %s", timeout)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("broker connect: %w", err)
	}
	c.session = ConnectedUndiscovered
	return nil
}

// Disconnect tears the session down without the farewell. The reset
// flow uses it after the availability topic has been tombstoned.
func (c *Client) Disconnect() {
	c.wire.Disconnect()
	c.session = Disconnected
}

// Close publishes the retained "offline" farewell and tears the
// session down cleanly. Used on graceful shutdown; an unclean exit
// leaves the farewell to the will.
func (c *Client) Close() {
	if c.session.Connected() {
		if err := c.PublishRetained(c.topics.Availability(), []byte(PayloadNotAvailable)); err != nil {
			c.logger.Warn("availability publish failed", "error", err)
		}
	}
	c.wire.Disconnect()
	c.session = Disconnected
}
