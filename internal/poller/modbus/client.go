// internal/poller/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Transport modes.
const (
	ModeTCP        = "tcp"        // Modbus TCP (MBAP framing)
	ModeRTUOverTCP = "rtuovertcp" // RTU frames over a raw TCP stream
	ModeRTU        = "rtu"        // RTU on a serial line
)

// ErrConnect wraps every failure to open the transport.
var ErrConnect = errors.New("modbus: connect failed")

// Config is minimal transport config.
type Config struct {
	Mode string

	// Endpoint is host:port for the TCP modes, the device path for rtu.
	Endpoint string

	// Serial line settings, rtu only.
	BaudRate int
	DataBits int
	Parity   string
	StopBits int

	Timeout time.Duration
}

// Client implements poller.Client on top of goburrow/modbus.
// It serializes requests because the handler's slave id is shared state
// that each request mutates.
type Client struct {
	mu      sync.Mutex
	client  modbus.Client
	setUnit func(uint8)
	close   func() error
}

// New creates a connected client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus client: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	switch strings.ToLower(cfg.Mode) {
	case ModeTCP:
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Endpoint, err)
		}
		return &Client{
			client:  modbus.NewClient(h),
			setUnit: func(id uint8) { h.SlaveId = id },
			close:   h.Close,
		}, nil

	case ModeRTUOverTCP, "":
		// The RTU handler only packages frames here; the stream is ours.
		p := modbus.NewRTUClientHandler("")
		t := &rtuOverTCP{address: cfg.Endpoint, timeout: cfg.Timeout}
		if err := t.Connect(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Endpoint, err)
		}
		return &Client{
			client:  modbus.NewClient2(p, t),
			setUnit: func(id uint8) { p.SlaveId = id },
			close:   t.Close,
		}, nil

	case ModeRTU:
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.BaudRate = orDefault(cfg.BaudRate, 9600)
		h.DataBits = orDefault(cfg.DataBits, 8)
		h.StopBits = orDefault(cfg.StopBits, 1)
		h.Parity = parity(cfg.Parity)
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Endpoint, err)
		}
		return &Client{
			client:  modbus.NewClient(h),
			setUnit: func(id uint8) { h.SlaveId = id },
			close:   h.Close,
		}, nil

	default:
		return nil, fmt.Errorf("modbus client: unknown mode %q", cfg.Mode)
	}
}

// ReadHoldingRegisters reads qty registers at addr from unitID (FC 3).
// The returned bytes are the register values, big-endian, without byte count.
func (c *Client) ReadHoldingRegisters(unitID uint8, addr, qty uint16) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setUnit(unitID)
	return c.client.ReadHoldingRegisters(addr, qty)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.close == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

// parity converts the config spelling into the driver's.
func parity(p string) string {
	switch strings.ToLower(p) {
	case "even", "e":
		return "E"
	case "odd", "o":
		return "O"
	default:
		return "N"
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
