// internal/publisher/mqtt/client.go
package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"k8s.io/klog/v2"

	"github.com/tamzrod/kostal2mqtt/internal/status"
)

// ErrConnect wraps every failure of the initial broker connection.
var ErrConnect = errors.New("mqtt: connect failed")

var newClient = paho.NewClient

type Config struct {
	Broker   string // tcp://host:port
	ClientID string
	Username string
	Password string
	QoS      byte
	Retained bool

	// StatusTopic receives a retained online message on every connect and
	// the offline last will. Empty disables availability messages.
	StatusTopic string

	ConnectTimeout time.Duration
}

// Client is a fire-and-forget publisher on one broker connection.
// Reconnects are left to paho.
type Client struct {
	cfg    Config
	client paho.Client
}

// New connects to the broker. The connection is attempted once.
func New(cfg Config) (*Client, error) {
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetOrderMatters(false)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	if cfg.StatusTopic != "" {
		opts.SetWill(cfg.StatusTopic, status.Offline, cfg.QoS, true)
	}

	opts.OnConnect = func(c paho.Client) {
		klog.Info("MQTT connected")
		if cfg.StatusTopic != "" {
			c.Publish(cfg.StatusTopic, cfg.QoS, true, status.Encode(true))
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		klog.Warningf("MQTT connection lost: %v", err)
	}

	c := newClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("%w: %s: timed out", ErrConnect, cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnect, cfg.Broker, err)
	}

	return &Client{cfg: cfg, client: c}, nil
}

// Publish hands payload to paho and returns at once.
// Delivery failures are only logged.
func (c *Client) Publish(topic string, payload []byte) {
	tok := c.client.Publish(topic, c.cfg.QoS, c.cfg.Retained, payload)

	go func() {
		<-tok.Done()
		if err := tok.Error(); err != nil {
			klog.Warningf("mqtt: publish %s: %v", topic, err)
		}
	}()
}

// Close marks the bridge offline and disconnects.
func (c *Client) Close() {
	if c.cfg.StatusTopic != "" {
		c.client.Publish(c.cfg.StatusTopic, c.cfg.QoS, true, status.Encode(false)).
			WaitTimeout(time.Second)
	}
	c.client.Disconnect(250)
}
