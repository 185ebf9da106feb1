// internal/publisher/mqtt/client_test.go
package mqtt

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/kostal2mqtt/internal/status"
)

type doneToken struct {
	err error
}

func (doneToken) Wait() bool { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error { return t.err }

func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sent struct {
	topic    string
	qos      byte
	retained bool
	payload  string
}

// fakePaho records publishes; methods it does not override panic via the
// nil embedded interface.
type fakePaho struct {
	paho.Client

	opts       *paho.ClientOptions
	connectErr error
	publishErr error

	mu           sync.Mutex
	sent         []sent
	disconnected bool
}

func (f *fakePaho) Connect() paho.Token {
	if f.connectErr == nil && f.opts.OnConnect != nil {
		f.opts.OnConnect(f)
	}
	return doneToken{err: f.connectErr}
}

func (f *fakePaho) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{topic, qos, retained, string(payload.([]byte))})
	return doneToken{err: f.publishErr}
}

func (f *fakePaho) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = true
}

func (f *fakePaho) messages() []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sent(nil), f.sent...)
}

func withFake(t *testing.T, f *fakePaho) {
	t.Helper()
	prev := newClient
	newClient = func(o *paho.ClientOptions) paho.Client {
		f.opts = o
		return f
	}
	t.Cleanup(func() { newClient = prev })
}

func testConfig() Config {
	return Config{
		Broker:      "tcp://broker:1883",
		ClientID:    "kostal1Client",
		Username:    "user",
		Password:    "secret",
		QoS:         1,
		StatusTopic: status.Topic("Kostal"),
	}
}

func TestNew_BrokerRequired(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = New(Config{
		Broker:         "tcp://" + addr,
		ClientID:       "test",
		ConnectTimeout: 2 * time.Second,
	})
	assert.ErrorIs(t, err, ErrConnect)
}

func TestNew_ConnectRefused(t *testing.T) {
	withFake(t, &fakePaho{connectErr: errors.New("not authorized")})

	_, err := New(testConfig())
	assert.ErrorIs(t, err, ErrConnect)
}

func TestNew_WillAndOnline(t *testing.T) {
	f := &fakePaho{}
	withFake(t, f)

	_, err := New(testConfig())
	require.NoError(t, err)

	assert.True(t, f.opts.WillEnabled)
	assert.Equal(t, "Kostal/status", f.opts.WillTopic)
	assert.Equal(t, status.Offline, string(f.opts.WillPayload))
	assert.True(t, f.opts.WillRetained)
	assert.Equal(t, byte(1), f.opts.WillQos)
	assert.Equal(t, "user", f.opts.Username)

	assert.Equal(t, []sent{{"Kostal/status", 1, true, status.Online}}, f.messages())
}

func TestNew_NoStatusTopic(t *testing.T) {
	f := &fakePaho{}
	withFake(t, f)

	cfg := testConfig()
	cfg.StatusTopic = ""
	_, err := New(cfg)
	require.NoError(t, err)

	assert.False(t, f.opts.WillEnabled)
	assert.Empty(t, f.messages())
}

func TestPublish(t *testing.T) {
	f := &fakePaho{}
	withFake(t, f)

	cfg := testConfig()
	cfg.Retained = true
	c, err := New(cfg)
	require.NoError(t, err)

	c.Publish("Kostal/PK12345", []byte(`{"DailyYield":1}`))

	msgs := f.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, sent{"Kostal/PK12345", 1, true, `{"DailyYield":1}`}, msgs[1])
}

func TestPublish_ErrorIsNotFatal(t *testing.T) {
	f := &fakePaho{publishErr: errors.New("not connected")}
	withFake(t, f)

	c, err := New(testConfig())
	require.NoError(t, err)

	c.Publish("Kostal/PK12345", []byte(`{}`))
	assert.Len(t, f.messages(), 2)
}

func TestClose_PublishesOffline(t *testing.T) {
	f := &fakePaho{}
	withFake(t, f)

	c, err := New(testConfig())
	require.NoError(t, err)

	c.Close()

	msgs := f.messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, sent{"Kostal/status", 1, true, status.Offline}, msgs[len(msgs)-1])
	assert.True(t, f.disconnected)
}
