package mqtt

// Availability sentinel payloads, fixed by the discovery documents
// that reference them.
const (
	PayloadAvailable    = "online"
	PayloadNotAvailable = "offline"
)

// Topics derives every topic name from the discovery prefix and the
// stable device identity.
type Topics struct {
	DiscoveryPrefix string
	DeviceName      string
}

// State is the shared retained telemetry topic.
func (t Topics) State() string { return t.DeviceName + "/state" }

// Availability is the retained online/offline topic, also the
// session's will topic.
func (t Topics) Availability() string { return t.DeviceName + "/availability" }

// Discovery returns the retained config topic for one channel.
func (t Topics) Discovery(channel string) string {
	return t.DiscoveryPrefix + "/sensor/" + t.DeviceName + "/" + channel + "/config"
}
