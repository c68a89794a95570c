// Package config handles weatherstation configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/weatherstation/config.yaml,
// /etc/weatherstation/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "weatherstation", "config.yaml"))
	}

	paths = append(paths, "/etc/weatherstation/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "10s" or "41ms" via time.ParseDuration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all weatherstation configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Link      LinkConfig      `yaml:"link"`
	Sensor    SensorConfig    `yaml:"sensor"`
	Display   DisplayConfig   `yaml:"display"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	LogLevel  string          `yaml:"log_level"`
}

// DeviceConfig identifies this station.
type DeviceConfig struct {
	// Name is the stable device identity. It is the MQTT client ID, the
	// topic namespace, and the prefix for per-channel unique IDs.
	Name string `yaml:"name"`
	// FriendlyName appears in the Home Assistant UI.
	FriendlyName string `yaml:"friendly_name"`
	// DataDir stores the persisted instance ID.
	DataDir string `yaml:"data_dir"`
	// ResetButtonPin, when set, names a GPIO pin sampled once at startup.
	// Held low selects the retained-message reset flow.
	ResetButtonPin string `yaml:"reset_button_pin"`
}

// MQTTConfig defines the broker connection settings.
type MQTTConfig struct {
	Broker            string   `yaml:"broker"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	DiscoveryPrefix   string   `yaml:"discovery_prefix"`
	ReconnectInterval Duration `yaml:"reconnect_interval"`
	PublishTimeout    Duration `yaml:"publish_timeout"`
}

// LinkConfig defines the wireless uplink settings.
type LinkConfig struct {
	// Interface is the network interface whose carrier state is polled.
	Interface string `yaml:"interface"`
	// AssociateCmd, when set, is executed to trigger reassociation
	// (e.g. "wpa_cli -i wlan0 reassociate"). Empty leaves reassociation
	// to the OS supplicant.
	AssociateCmd      string   `yaml:"associate_cmd"`
	ReconnectInterval Duration `yaml:"reconnect_interval"`
}

// SensorConfig defines the environmental sensor settings.
type SensorConfig struct {
	// I2CBus is the bus name for periph's i2creg; empty selects the
	// first available bus.
	I2CBus         string   `yaml:"i2c_bus"`
	I2CAddr        uint16   `yaml:"i2c_addr"`
	SampleInterval Duration `yaml:"sample_interval"`
}

// DisplayConfig defines the local OLED settings. The panel's I2C
// address is not configurable; the ssd1306 driver fixes it at 0x3C.
type DisplayConfig struct {
	Enabled bool `yaml:"enabled"`
	// Rotated renders the 128x64 panel in portrait, matching the
	// station's physical mounting.
	Rotated         bool     `yaml:"rotated"`
	RefreshInterval Duration `yaml:"refresh_interval"`
}

// TelemetryConfig defines the state publishing settings.
type TelemetryConfig struct {
	PublishInterval Duration `yaml:"publish_interval"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{
		Display: DisplayConfig{Enabled: true, Rotated: true},
	}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if cfg.Device.Name == "" {
		return nil, fmt.Errorf("device.name must be set")
	}
	if cfg.MQTT.Broker == "" {
		return nil, fmt.Errorf("mqtt.broker must be set")
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	cfg := &Config{
		Display: DisplayConfig{Enabled: true, Rotated: true},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Device.DataDir == "" {
		c.Device.DataDir = "/var/lib/weatherstation"
	}
	if c.Device.FriendlyName == "" {
		c.Device.FriendlyName = c.Device.Name
	}
	if c.MQTT.DiscoveryPrefix == "" {
		c.MQTT.DiscoveryPrefix = "homeassistant"
	}
	if c.MQTT.ReconnectInterval <= 0 {
		c.MQTT.ReconnectInterval = Duration(10 * time.Second)
	}
	if c.MQTT.PublishTimeout <= 0 {
		c.MQTT.PublishTimeout = Duration(250 * time.Millisecond)
	}
	if c.Link.Interface == "" {
		c.Link.Interface = "wlan0"
	}
	if c.Link.ReconnectInterval <= 0 {
		c.Link.ReconnectInterval = Duration(30 * time.Second)
	}
	if c.Sensor.I2CAddr == 0 {
		c.Sensor.I2CAddr = 0x76
	}
	if c.Sensor.SampleInterval <= 0 {
		c.Sensor.SampleInterval = Duration(time.Second)
	}
	if c.Display.RefreshInterval <= 0 {
		c.Display.RefreshInterval = Duration(2 * time.Second)
	}
	if c.Telemetry.PublishInterval <= 0 {
		c.Telemetry.PublishInterval = Duration(10 * time.Second)
	}
}
