// Package mqtt owns the broker session state machine and everything
// published through it: Home Assistant discovery documents, retained
// telemetry state, the availability topic, and the retained-message
// reset flow.
//
// The session is driven cooperatively from the station loop. Maintain
// advances connection establishment one non-blocking step per
// iteration, Service detects silent session loss by polling, and the
// discovery and telemetry publishers gate themselves on the resulting
// [Session] state. Discovery re-fires once per session instance, not
// once per process lifetime, because a broker that dropped the session
// may have forgotten its retained state. A will message ensures the
// availability topic transitions to "offline" on unexpected
// disconnects.
package mqtt
