package mqtt

import (
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Token is the completion handle for an asynchronous wire operation.
type Token interface {
	// Wait blocks up to timeout for completion and reports whether the
	// operation finished. Wait(0) polls without blocking.
	Wait(timeout time.Duration) bool
	// Error returns the operation's outcome once Wait reported
	// completion.
	Error() error
}

// Wire is the narrow MQTT transport surface the session machine
// drives. The production implementation wraps eclipse/paho; tests
// substitute a fake.
type Wire interface {
	// Connect starts a connection attempt carrying the client
	// identity, credentials, and the will registered at construction.
	// It never blocks; poll the Token.
	Connect() Token
	// Publish sends one QoS 0 message; completion means the packet was
	// written to the transport.
	Publish(topic string, payload []byte, retained bool) Token
	// Connected reports whether the session transport is alive.
	Connected() bool
	// Disconnect tears the session down cleanly, suppressing the will.
	Disconnect()
}

// WireOptions configures the production wire.
type WireOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	// The will is published by the broker itself, retained, if this
	// client disconnects uncleanly.
	WillTopic   string
	WillPayload string
}

type pahoWire struct {
	client paho.Client
}

// NewPahoWire builds the production Wire over eclipse/paho. Automatic
// reconnection is disabled: the session machine owns retry policy, so
// a lost connection stays lost until Maintain dials again.
func NewPahoWire(opts WireOptions) Wire {
	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetKeepAlive(30*time.Second).
		SetConnectTimeout(10*time.Second).
		SetWill(opts.WillTopic, opts.WillPayload, 0, true)

	return &pahoWire{client: paho.NewClient(co)}
}

func (w *pahoWire) Connect() Token {
	return pahoToken{w.client.Connect()}
}

func (w *pahoWire) Publish(topic string, payload []byte, retained bool) Token {
	return pahoToken{w.client.Publish(topic, 0, retained, payload)}
}

func (w *pahoWire) Connected() bool {
	return w.client.IsConnectionOpen()
}

func (w *pahoWire) Disconnect() {
	w.client.Disconnect(250)
}

type pahoToken struct {
	tok paho.Token
}

func (t pahoToken) Wait(timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case <-t.tok.Done():
			return true
		default:
			return false
		}
	}
	return t.tok.WaitTimeout(timeout)
}

func (t pahoToken) Error() error { return t.tok.Error() }
