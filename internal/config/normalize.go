// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	b := &cfg.Bridge

	b.Inverter.Mode = strings.ToLower(b.Inverter.Mode)

	// Topics are built as prefix + "/" + serial.
	b.MQTT.TopicPrefix = strings.TrimRight(b.MQTT.TopicPrefix, "/")

	// Serial line defaults only matter for rtu; harmless otherwise.
	if b.Inverter.Parity == "" {
		b.Inverter.Parity = "none"
	}
}

// Units returns the addresses as Modbus unit ids.
// Only valid after Validate().
func (b BridgeConfig) Units() []uint8 {
	out := make([]uint8, 0, len(b.Addresses))
	for _, a := range b.Addresses {
		out = append(out, uint8(a))
	}
	return out
}
