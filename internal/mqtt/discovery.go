package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// DiscoveryPublisher announces one retained discovery document per
// measurement channel, exactly once per session instance.
type DiscoveryPublisher struct {
	client *Client
	docs   []discoveryDoc
	logger *slog.Logger
}

type discoveryDoc struct {
	channel string
	topic   string
	payload []byte
}

// NewDiscoveryPublisher precomputes the documents once so repeated
// announcements are byte-identical.
func NewDiscoveryPublisher(client *Client, device DeviceInfo, deviceName string, topics Topics, logger *slog.Logger) (*DiscoveryPublisher, error) {
	docs := make([]discoveryDoc, 0, len(Channels))
	for _, ch := range Channels {
		cfg := ChannelConfig{
			Device:              device,
			Name:                ch.Label,
			UniqueID:            deviceName + "_" + ch.Name,
			StateTopic:          topics.State(),
			AvailabilityTopic:   topics.Availability(),
			PayloadAvailable:    PayloadAvailable,
			PayloadNotAvailable: PayloadNotAvailable,
			ValueTemplate:       "{{ value_json." + ch.Name + " }}",
			UnitOfMeasurement:   ch.Unit,
			DeviceClass:         ch.Class,
			StateClass:          "measurement",
		}
		payload, err := json.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshal %s discovery: %w", ch.Name, err)
		}
		docs = append(docs, discoveryDoc{
			channel: ch.Name,
			topic:   topics.Discovery(ch.Name),
			payload: payload,
		})
	}

	return &DiscoveryPublisher{client: client, docs: docs, logger: logger}, nil
}

// Publish announces all channels. It is a no-op unless the session is
// connected and unannounced. Retained publishes are last-write-wins
// with identical content, so a partial failure simply retries from the
// first document on the next iteration; no two-phase commit is needed.
func (d *DiscoveryPublisher) Publish() {
	if d.client.Session() != ConnectedUndiscovered {
		return
	}

	for _, doc := range d.docs {
		if err := d.client.PublishRetained(doc.topic, doc.payload); err != nil {
			d.logger.Warn("discovery publish failed",
				"channel", doc.channel, "topic", doc.topic, "error", err)
			return
		}
		d.logger.Debug("discovery published",
			"channel", doc.channel, "topic", doc.topic)
	}

	d.client.Discovered()
	d.logger.Info("discovery announced", "channels", len(d.docs))
}
