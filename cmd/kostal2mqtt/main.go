// cmd/kostal2mqtt/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/tamzrod/kostal2mqtt/internal/config"
	"github.com/tamzrod/kostal2mqtt/internal/metrics"
	"github.com/tamzrod/kostal2mqtt/internal/poller"
	"github.com/tamzrod/kostal2mqtt/internal/publisher"
	"github.com/tamzrod/kostal2mqtt/internal/publisher/mqtt"
	"github.com/tamzrod/kostal2mqtt/internal/status"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	defer klog.Flush()

	// --------------------
	// Flags + config
	// --------------------

	flags := config.NewFlags("kostal2mqtt")
	logFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(logFlags)
	flags.FlagSet().AddGoFlagSet(logFlags)

	cfg, err := flags.Parse(args)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		klog.Errorf("config load failed: %v", err)
		return 1
	}

	if err := config.Validate(cfg); err != nil {
		klog.Errorf("config validation failed: %v", err)
		return 1
	}
	config.Normalize(cfg)

	b := cfg.Bridge
	if b.Debug {
		_ = logFlags.Set("v", "2")
	}

	klog.Infof("MQTT Host         : %s", b.MQTT.Host)
	klog.Infof("MQTT Client ID    : %s", b.MQTT.ClientID)
	klog.Infof("Kostal MODBUS addr: %v", b.Addresses)
	if b.Inverter.Mode == config.ModeRTU {
		klog.Infof("Kostal serial port: %s", b.Inverter.Endpoint())
	} else {
		klog.Infof("Kostal host       : %s (%s)", b.Inverter.Endpoint(), b.Inverter.Mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Publisher (MQTT)
	// --------------------

	mc, err := mqtt.New(mqtt.Config{
		Broker:      b.MQTT.Broker(),
		ClientID:    b.MQTT.ClientID,
		Username:    b.MQTT.Username,
		Password:    b.MQTT.Password,
		QoS:         byte(b.MQTT.QoS),
		Retained:    b.MQTT.Retained,
		StatusTopic: status.Topic(b.MQTT.TopicPrefix),
	})
	if err != nil {
		klog.Errorf("Can't connect: %v", err)
		return 1
	}
	defer mc.Close()

	pub := publisher.New(b.MQTT.TopicPrefix, mc)

	// --------------------
	// Metrics (optional)
	// --------------------

	m := metrics.New()
	if b.Metrics.Listen != "" {
		go func() {
			if err := m.Serve(ctx, b.Metrics.Listen); err != nil {
				klog.Errorf("metrics server: %v", err)
			}
		}()
	}

	// --------------------
	// Poller (Modbus)
	// --------------------

	p, closeTransport, err := poller.Build(b, pub, poller.WithRecorder(m))
	if err != nil {
		klog.Errorf("inverter connect failed: %v", err)
		return 1
	}
	defer closeTransport()

	err = p.Run(ctx)
	switch {
	case errors.Is(err, poller.ErrErrorBudgetExceeded):
		klog.Error("too many errors - exiting")
		return 1
	case errors.Is(err, context.Canceled):
		klog.Info("shutting down")
		return 0
	default:
		klog.Errorf("poller stopped: %v", err)
		return 1
	}
}
