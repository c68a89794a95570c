package mqtt

import "testing"

func TestTopics_Paths(t *testing.T) {
	topics := Topics{DiscoveryPrefix: "homeassistant", DeviceName: "pc_xiaoc3_weather"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"state", topics.State(), "pc_xiaoc3_weather/state"},
		{"availability", topics.Availability(), "pc_xiaoc3_weather/availability"},
		{"discovery temperature", topics.Discovery("temperature"), "homeassistant/sensor/pc_xiaoc3_weather/temperature/config"},
		{"discovery legacy", topics.Discovery("pressure_bar"), "homeassistant/sensor/pc_xiaoc3_weather/pressure_bar/config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestNewDeviceInfo(t *testing.T) {
	info := NewDeviceInfo("test-instance-id", "Desktop Station Weather")
	if info.Name != "Desktop Station Weather" {
		t.Errorf("Name = %q, want %q", info.Name, "Desktop Station Weather")
	}
	if len(info.Identifiers) != 1 || info.Identifiers[0] != "test-instance-id" {
		t.Errorf("Identifiers = %v, want [test-instance-id]", info.Identifiers)
	}
	if info.Model == "" || info.Manufacturer == "" {
		t.Errorf("Model/Manufacturer must be set, got %+v", info)
	}
}
