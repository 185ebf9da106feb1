// internal/config/validate_test.go
package config

import (
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- tests ----

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidate_Addresses(t *testing.T) {
	cases := []struct {
		name  string
		addrs []int
		ok    bool
	}{
		{"single", []int{71}, true},
		{"several", []int{71, 72, 1, 247}, true},
		{"empty", nil, false},
		{"zero", []int{0}, false},
		{"too high", []int{248}, false},
		{"duplicate", []int{71, 71}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Bridge.Addresses = tc.addrs
			err := Validate(cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_Modes(t *testing.T) {
	cfg := Default()
	cfg.Bridge.Inverter.Mode = "RTU"
	assert.Error(t, Validate(cfg), "rtu without device")

	cfg.Bridge.Inverter.Device = "/dev/ttyUSB0"
	assert.NoError(t, Validate(cfg))

	cfg.Bridge.Inverter.DataBits = 9
	assert.Error(t, Validate(cfg), "data bits")
	cfg.Bridge.Inverter.DataBits = 7
	cfg.Bridge.Inverter.StopBits = 3
	assert.Error(t, Validate(cfg), "stop bits")
	cfg.Bridge.Inverter.StopBits = 2
	assert.NoError(t, Validate(cfg))

	cfg.Bridge.Inverter.Mode = "tcp"
	cfg.Bridge.Inverter.Port = 0
	assert.Error(t, Validate(cfg))

	cfg.Bridge.Inverter.Mode = "udp"
	assert.Error(t, Validate(cfg))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Bridge.MQTT.Host = ""
	cfg.Bridge.MQTT.QoS = 3
	cfg.Bridge.Poll.WaitMs = 0
	cfg.Bridge.Poll.ErrorBudget = 0

	err := Validate(cfg)
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 4)
}

func TestValidate_TopicWildcards(t *testing.T) {
	cfg := Default()
	cfg.Bridge.MQTT.TopicPrefix = "Kostal/#"
	assert.Error(t, Validate(cfg))
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Bridge.Inverter.Mode = "RTUoverTCP"
	cfg.Bridge.MQTT.TopicPrefix = "solar/kostal/"
	cfg.Bridge.Inverter.Parity = ""

	require.NoError(t, Validate(cfg))
	Normalize(cfg)

	assert.Equal(t, ModeRTUOverTCP, cfg.Bridge.Inverter.Mode)
	assert.Equal(t, "solar/kostal", cfg.Bridge.MQTT.TopicPrefix)
	assert.Equal(t, "none", cfg.Bridge.Inverter.Parity)
	assert.Equal(t, []uint8{71}, cfg.Bridge.Units())
}

func TestBrokerURL(t *testing.T) {
	cases := map[string]string{
		"localhost":         "tcp://localhost:1883",
		"broker:1884":       "tcp://broker:1884",
		"ssl://broker:8883": "ssl://broker:8883",
		"mqtt.example.org":  "tcp://mqtt.example.org:1883",
	}
	for in, want := range cases {
		assert.Equal(t, want, MQTTConfig{Host: in}.Broker(), in)
	}
}

func TestEndpoint(t *testing.T) {
	i := Default().Bridge.Inverter
	assert.Equal(t, "10.0.0.21:1502", i.Endpoint())

	i.Mode = ModeRTU
	i.Device = "/dev/ttyUSB0"
	assert.Equal(t, "/dev/ttyUSB0", i.Endpoint())
}
