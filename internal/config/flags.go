// internal/config/flags.go
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Flags binds the command line to a Config.
// Flag values override the config file; flags that are not given on the
// command line leave the file (or default) value alone.
type Flags struct {
	fs *pflag.FlagSet

	configPath string

	mqttHost     string
	mqttClientID string
	mqttUser     string
	mqttPassword string
	topic        string

	inverterHost string
	inverterPort string
	mode         string
	device       string
	baudRate     int
	timeoutMs    int

	addresses []int
	waitMs    int
	debug     bool
	metrics   string
}

// NewFlags defines every bridge flag on a fresh flag set.
func NewFlags(name string) *Flags {
	d := Default().Bridge
	f := &Flags{fs: pflag.NewFlagSet(name, pflag.ContinueOnError)}
	fs := f.fs

	fs.StringVar(&f.configPath, "config", "", "YAML config file")

	fs.StringVarP(&f.mqttHost, "mqtthost", "m", d.MQTT.Host, "MQTT broker host")
	fs.StringVarP(&f.mqttClientID, "mqttclientid", "c", d.MQTT.ClientID, "MQTT client id")
	fs.StringVar(&f.mqttUser, "mqttuser", "", "MQTT username")
	fs.StringVar(&f.mqttPassword, "mqttpassword", "", "MQTT password")
	fs.StringVarP(&f.topic, "topic", "t", d.MQTT.TopicPrefix, "MQTT topic prefix")

	fs.StringVarP(&f.inverterHost, "inverterhost", "i", d.Inverter.Host, "inverter (or gateway) host")
	fs.StringVarP(&f.inverterPort, "inverterport", "p", strconv.Itoa(d.Inverter.Port),
		"inverter (or gateway) TCP port, or the serial device in rtu mode")
	fs.StringVar(&f.mode, "mode", d.Inverter.Mode, "transport: rtuovertcp, tcp or rtu")
	fs.StringVar(&f.device, "device", "", "serial device, rtu mode")
	fs.IntVar(&f.baudRate, "baudrate", d.Inverter.BaudRate, "serial baud rate, rtu mode")
	fs.IntVar(&f.timeoutMs, "timeout", d.Inverter.TimeoutMs, "Modbus response timeout in ms")

	fs.IntSliceVarP(&f.addresses, "address", "a", d.Addresses, "Modbus unit id to poll (repeatable)")
	fs.IntVarP(&f.waitMs, "wait", "w", d.Poll.WaitMs, "pause between poll rounds in ms")
	fs.BoolVarP(&f.debug, "debug", "d", false, "verbose logging")
	fs.StringVar(&f.metrics, "metrics", "", "listen address for Prometheus metrics, empty disables")

	return f
}

// FlagSet exposes the underlying set, e.g. to merge logging flags.
func (f *Flags) FlagSet() *pflag.FlagSet {
	return f.fs
}

// Parse parses args and builds the effective configuration:
// defaults, then --config file, then explicit flags.
func (f *Flags) Parse(args []string) (*Config, error) {
	if err := f.fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	if f.configPath != "" {
		if err := loadInto(f.configPath, cfg); err != nil {
			return nil, err
		}
	}

	b := &cfg.Bridge
	set := func(name string, apply func()) {
		if f.fs.Changed(name) {
			apply()
		}
	}

	set("mqtthost", func() { b.MQTT.Host = f.mqttHost })
	set("mqttclientid", func() { b.MQTT.ClientID = f.mqttClientID })
	set("mqttuser", func() { b.MQTT.Username = f.mqttUser })
	set("mqttpassword", func() { b.MQTT.Password = f.mqttPassword })
	set("topic", func() { b.MQTT.TopicPrefix = f.topic })

	set("inverterhost", func() { b.Inverter.Host = f.inverterHost })
	set("mode", func() { b.Inverter.Mode = f.mode })
	set("device", func() { b.Inverter.Device = f.device })
	set("baudrate", func() { b.Inverter.BaudRate = f.baudRate })
	set("timeout", func() { b.Inverter.TimeoutMs = f.timeoutMs })

	set("address", func() { b.Addresses = append([]int(nil), f.addresses...) })
	set("wait", func() { b.Poll.WaitMs = f.waitMs })
	set("debug", func() { b.Debug = f.debug })
	set("metrics", func() { b.Metrics.Listen = f.metrics })

	// -p depends on the effective mode, so it goes last
	if f.fs.Changed("inverterport") {
		if err := applyPort(&b.Inverter, f.inverterPort); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// applyPort routes -p to the serial device in rtu mode and to the TCP port otherwise.
func applyPort(inv *InverterConfig, v string) error {
	if strings.EqualFold(strings.TrimSpace(inv.Mode), ModeRTU) {
		inv.Device = v
		return nil
	}
	port, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("inverter port %q is not a number (serial devices need --mode rtu)", v)
	}
	inv.Port = port
	return nil
}
