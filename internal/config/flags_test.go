// internal/config/flags_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestFlags_Defaults(t *testing.T) {
	cfg, err := NewFlags("test").Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestFlags_ShortAliases(t *testing.T) {
	cfg, err := NewFlags("test").Parse([]string{
		"-m", "broker", "-c", "client2", "-i", "192.168.1.5", "-p", "502",
		"-a", "71", "-a", "72", "-w", "5000", "-d",
	})
	require.NoError(t, err)

	b := cfg.Bridge
	assert.Equal(t, "broker", b.MQTT.Host)
	assert.Equal(t, "client2", b.MQTT.ClientID)
	assert.Equal(t, "192.168.1.5", b.Inverter.Host)
	assert.Equal(t, 502, b.Inverter.Port)
	assert.Equal(t, []int{71, 72}, b.Addresses)
	assert.Equal(t, 5000, b.Poll.WaitMs)
	assert.True(t, b.Debug)
}

func TestFlags_PortIsSerialDeviceInRTUMode(t *testing.T) {
	cfg, err := NewFlags("test").Parse([]string{"--mode", "rtu", "-p", "/dev/ttyUSB0"})
	require.NoError(t, err)

	inv := cfg.Bridge.Inverter
	assert.Equal(t, "/dev/ttyUSB0", inv.Device)
	assert.Equal(t, 1502, inv.Port)
	assert.Equal(t, "/dev/ttyUSB0", inv.Endpoint())
	assert.NoError(t, Validate(cfg))
}

func TestFlags_PortFollowsModeFromFile(t *testing.T) {
	p := writeFile(t, "bridge:\n  inverter:\n    mode: rtu\n")

	cfg, err := NewFlags("test").Parse([]string{"--config", p, "-p", "/dev/ttyS1"})
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyS1", cfg.Bridge.Inverter.Device)
}

func TestFlags_PortNotANumber(t *testing.T) {
	_, err := NewFlags("test").Parse([]string{"--mode", "tcp", "-p", "/dev/ttyUSB0"})
	assert.Error(t, err)

	_, err = NewFlags("test").Parse([]string{"-p", "abc"})
	assert.Error(t, err)
}

func TestFlags_OverrideFile(t *testing.T) {
	p := writeFile(t, `
bridge:
  mqtt:
    host: file-broker
    topic_prefix: pv
  addresses: [3, 4]
  poll:
    wait_ms: 2000
`)

	cfg, err := NewFlags("test").Parse([]string{"--config", p, "--wait", "7000"})
	require.NoError(t, err)

	b := cfg.Bridge
	assert.Equal(t, "file-broker", b.MQTT.Host)
	assert.Equal(t, "pv", b.MQTT.TopicPrefix)
	assert.Equal(t, []int{3, 4}, b.Addresses)
	assert.Equal(t, 7000, b.Poll.WaitMs)
	// untouched keys keep defaults
	assert.Equal(t, "kostal1Client", b.MQTT.ClientID)
	assert.Equal(t, 30, b.Poll.ErrorBudget)
}

func TestFlags_BadFlag(t *testing.T) {
	f := NewFlags("test")
	f.FlagSet().SetOutput(new(discard))
	_, err := f.Parse([]string{"--nope"})
	assert.Error(t, err)
}

func TestLoad_UnknownKey(t *testing.T) {
	p := writeFile(t, "bridge:\n  mqtt:\n    hots: typo\n")
	_, err := Load(p)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
