package mqtt

import (
	"fmt"
	"log/slog"
)

// ResetCoordinator retracts every retained message this device has
// ever published. Broker retained stores have no bulk delete, so each
// historically used topic gets an individual tombstone: an empty
// retained payload.
type ResetCoordinator struct {
	client *Client
	topics Topics
	logger *slog.Logger
}

// NewResetCoordinator creates a coordinator over an already connected
// client.
func NewResetCoordinator(client *Client, topics Topics, logger *slog.Logger) *ResetCoordinator {
	return &ResetCoordinator{client: client, topics: topics, logger: logger}
}

// Topics enumerates everything to tombstone: the current channel
// configs, the legacy channel configs from earlier firmware, then the
// state and availability topics.
func (r *ResetCoordinator) Topics() []string {
	out := make([]string, 0, len(Channels)+len(legacyChannels)+2)
	for _, ch := range Channels {
		out = append(out, r.topics.Discovery(ch.Name))
	}
	for _, name := range legacyChannels {
		out = append(out, r.topics.Discovery(name))
	}
	return append(out, r.topics.State(), r.topics.Availability())
}

// Reset publishes one tombstone per enumerated topic. The first
// failure aborts so the operator can retry; restarting the process is
// the caller's job.
func (r *ResetCoordinator) Reset() error {
	for _, topic := range r.Topics() {
		if err := r.client.PublishRetained(topic, nil); err != nil {
			return fmt.Errorf("tombstone %s: %w", topic, err)
		}
		r.logger.Info("tombstoned", "topic", topic)
	}
	return nil
}
