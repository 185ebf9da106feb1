// internal/config/config.go
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Bridge BridgeConfig `yaml:"bridge"`
}

type BridgeConfig struct {
	MQTT      MQTTConfig     `yaml:"mqtt"`
	Inverter  InverterConfig `yaml:"inverter"`
	Addresses []int          `yaml:"addresses"` // Modbus unit ids, polled in order
	Poll      PollConfig     `yaml:"poll"`
	Metrics   MetricsConfig  `yaml:"metrics"`
	Debug     bool           `yaml:"debug"`
}

// ---- MQTT ----

type MQTTConfig struct {
	Host        string `yaml:"host"` // host, host:port or scheme://host:port
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Retained    bool   `yaml:"retained"`
}

// Broker returns the broker URL in the form paho expects.
func (m MQTTConfig) Broker() string {
	if strings.Contains(m.Host, "://") {
		return m.Host
	}
	host := m.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "1883")
	}
	return "tcp://" + host
}

// ---- INVERTER (transport) ----

type InverterConfig struct {
	Mode      string `yaml:"mode"` // rtuovertcp | tcp | rtu
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Device    string `yaml:"device"` // serial device, rtu only
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	Parity    string `yaml:"parity"`
	StopBits  int    `yaml:"stop_bits"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// Endpoint returns the transport address for the configured mode.
func (i InverterConfig) Endpoint() string {
	if i.Mode == ModeRTU {
		return i.Device
	}
	return net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}

func (i InverterConfig) Timeout() time.Duration {
	return time.Duration(i.TimeoutMs) * time.Millisecond
}

// ---- POLL ----

type PollConfig struct {
	WaitMs         int `yaml:"wait_ms"`          // pause after each full round
	RequestDelayMs int `yaml:"request_delay_ms"` // pause before the telemetry reads
	ErrorBudget    int `yaml:"error_budget"`     // consecutive failures tolerated
}

func (p PollConfig) Wait() time.Duration {
	return time.Duration(p.WaitMs) * time.Millisecond
}

func (p PollConfig) RequestDelay() time.Duration {
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}

// ---- METRICS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the endpoint
}

// ---- DEFAULTS ----

const (
	ModeRTUOverTCP = "rtuovertcp"
	ModeTCP        = "tcp"
	ModeRTU        = "rtu"
)

// Default returns the configuration used when neither file nor flags say otherwise.
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			MQTT: MQTTConfig{
				Host:        "localhost",
				ClientID:    "kostal1Client",
				TopicPrefix: "Kostal",
			},
			Inverter: InverterConfig{
				Mode:      ModeRTUOverTCP,
				Host:      "10.0.0.21",
				Port:      1502,
				BaudRate:  9600,
				DataBits:  8,
				Parity:    "none",
				StopBits:  1,
				TimeoutMs: 1000,
			},
			Addresses: []int{71},
			Poll: PollConfig{
				WaitMs:         10000,
				RequestDelayMs: 100,
				ErrorBudget:    30,
			},
		},
	}
}
