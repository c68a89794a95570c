package mqtt

// DeviceInfo holds the Home Assistant device registry fields shared
// across all discovery documents. Every channel references the same
// device block so HA groups them under a single device page.
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// ChannelConfig is the JSON discovery document for one measurement
// channel. Field order matches the wire schema consumed by Home
// Assistant; marshalling the same config twice is byte-identical.
type ChannelConfig struct {
	Device              DeviceInfo `json:"device"`
	Name                string     `json:"name"`
	UniqueID            string     `json:"unique_id"`
	StateTopic          string     `json:"state_topic"`
	AvailabilityTopic   string     `json:"availability_topic"`
	PayloadAvailable    string     `json:"payload_available"`
	PayloadNotAvailable string     `json:"payload_not_available"`
	ValueTemplate       string     `json:"value_template"`
	UnitOfMeasurement   string     `json:"unit_of_measurement"`
	DeviceClass         string     `json:"device_class"`
	StateClass          string     `json:"state_class"`
}

// NewDeviceInfo creates a DeviceInfo from the persistent instance ID
// and the human-readable device name. The instance ID is the primary
// HA device identifier (stable across renames); the friendly name
// appears in the HA UI.
func NewDeviceInfo(instanceID, friendlyName string) DeviceInfo {
	return DeviceInfo{
		Identifiers:  []string{instanceID},
		Name:         friendlyName,
		Model:        "BME280 Weather Station",
		Manufacturer: "ayushchinmay",
	}
}

// Channel describes one measurement channel of the station.
type Channel struct {
	Name  string // topic segment and telemetry payload field
	Label string // human-readable entity name
	Unit  string
	Class string // HA device_class
}

// Channels are the station's measurement channels, in announce order.
var Channels = []Channel{
	{Name: "temperature", Label: "Temperature", Unit: "°C", Class: "temperature"},
	{Name: "humidity", Label: "Humidity", Unit: "%", Class: "humidity"},
	{Name: "pressure", Label: "Pressure", Unit: "hPa", Class: "pressure"},
}

// legacyChannels were announced by earlier firmware revisions. Their
// retained config documents are tombstoned on reset.
var legacyChannels = []string{"temperature_f", "pressure_bar", "altitude"}
