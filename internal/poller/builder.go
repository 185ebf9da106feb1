// internal/poller/builder.go
package poller

import (
	cfg "github.com/tamzrod/kostal2mqtt/internal/config"
	pmodbus "github.com/tamzrod/kostal2mqtt/internal/poller/modbus"
)

// Build opens the inverter transport and wires a Poller on top of it.
// The transport is connected once, here; a failure is fatal to the caller.
func Build(b cfg.BridgeConfig, pub Publisher, opts ...Option) (*Poller, func() error, error) {
	client, err := pmodbus.New(pmodbus.Config{
		Mode:     b.Inverter.Mode,
		Endpoint: b.Inverter.Endpoint(),
		BaudRate: b.Inverter.BaudRate,
		DataBits: b.Inverter.DataBits,
		Parity:   b.Inverter.Parity,
		StopBits: b.Inverter.StopBits,
		Timeout:  b.Inverter.Timeout(),
	})
	if err != nil {
		return nil, nil, err
	}

	p, err := New(
		Config{
			Units:        b.Units(),
			Interval:     b.Poll.Wait(),
			RequestDelay: b.Poll.RequestDelay(),
			ErrorBudget:  uint(b.Poll.ErrorBudget),
		},
		client,
		pub,
		opts...,
	)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return p, client.Close, nil
}
