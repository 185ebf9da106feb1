// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Validate checks configuration correctness.
// It performs declarative validation only and reports every problem found.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	var result *multierror.Error
	b := cfg.Bridge

	// ------------------------------------------------------------
	// MQTT
	// ------------------------------------------------------------

	if b.MQTT.Host == "" {
		result = multierror.Append(result, fmt.Errorf("mqtt.host is required"))
	}
	if b.MQTT.TopicPrefix == "" {
		result = multierror.Append(result, fmt.Errorf("mqtt.topic_prefix is required"))
	}
	if strings.ContainsAny(b.MQTT.TopicPrefix, "+#") {
		result = multierror.Append(result, fmt.Errorf(
			"mqtt.topic_prefix %q must not contain wildcards", b.MQTT.TopicPrefix))
	}
	if b.MQTT.QoS < 0 || b.MQTT.QoS > 2 {
		result = multierror.Append(result, fmt.Errorf("mqtt.qos %d out of range 0-2", b.MQTT.QoS))
	}

	// ------------------------------------------------------------
	// INVERTER TRANSPORT
	// ------------------------------------------------------------

	switch strings.ToLower(b.Inverter.Mode) {
	case ModeRTUOverTCP, ModeTCP:
		if b.Inverter.Host == "" {
			result = multierror.Append(result, fmt.Errorf(
				"inverter.host is required in %s mode", b.Inverter.Mode))
		}
		if b.Inverter.Port <= 0 || b.Inverter.Port > 65535 {
			result = multierror.Append(result, fmt.Errorf(
				"inverter.port %d out of range", b.Inverter.Port))
		}
	case ModeRTU:
		if b.Inverter.Device == "" {
			result = multierror.Append(result, fmt.Errorf("inverter.device is required in rtu mode"))
		}
		if b.Inverter.BaudRate <= 0 {
			result = multierror.Append(result, fmt.Errorf(
				"inverter.baud_rate must be > 0, got %d", b.Inverter.BaudRate))
		}
		if b.Inverter.DataBits < 5 || b.Inverter.DataBits > 8 {
			result = multierror.Append(result, fmt.Errorf(
				"inverter.data_bits %d out of range 5-8", b.Inverter.DataBits))
		}
		if b.Inverter.StopBits < 1 || b.Inverter.StopBits > 2 {
			result = multierror.Append(result, fmt.Errorf(
				"inverter.stop_bits %d out of range 1-2", b.Inverter.StopBits))
		}
	default:
		result = multierror.Append(result, fmt.Errorf(
			"inverter.mode %q unknown (want %s, %s or %s)",
			b.Inverter.Mode, ModeRTUOverTCP, ModeTCP, ModeRTU))
	}

	if b.Inverter.TimeoutMs <= 0 {
		result = multierror.Append(result, fmt.Errorf(
			"inverter.timeout_ms must be > 0, got %d", b.Inverter.TimeoutMs))
	}

	// ------------------------------------------------------------
	// UNIT IDS
	// ------------------------------------------------------------

	if len(b.Addresses) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one address is required"))
	}

	seen := make(map[int]bool, len(b.Addresses))
	for _, a := range b.Addresses {
		if a < 1 || a > 247 {
			result = multierror.Append(result, fmt.Errorf("address %d out of range 1-247", a))
			continue
		}
		if seen[a] {
			result = multierror.Append(result, fmt.Errorf("address %d listed twice", a))
		}
		seen[a] = true
	}

	// ------------------------------------------------------------
	// POLL TIMING
	// ------------------------------------------------------------

	if b.Poll.WaitMs <= 0 {
		result = multierror.Append(result, fmt.Errorf("poll.wait_ms must be > 0, got %d", b.Poll.WaitMs))
	}
	if b.Poll.RequestDelayMs < 0 {
		result = multierror.Append(result, fmt.Errorf(
			"poll.request_delay_ms must be >= 0, got %d", b.Poll.RequestDelayMs))
	}
	if b.Poll.ErrorBudget <= 0 {
		result = multierror.Append(result, fmt.Errorf(
			"poll.error_budget must be > 0, got %d", b.Poll.ErrorBudget))
	}

	return result.ErrorOrNil()
}
