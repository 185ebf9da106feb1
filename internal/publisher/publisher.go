// internal/publisher/publisher.go
package publisher

import (
	"encoding/json"

	"k8s.io/klog/v2"

	"github.com/tamzrod/kostal2mqtt/internal/registers"
)

// Sink is the pub/sub client contract.
// Publish is fire-and-forget: delivery is not confirmed to the caller.
type Sink interface {
	Publish(topic string, payload []byte)
}

// Publisher turns snapshots into messages on <prefix>/<serial>.
type Publisher struct {
	prefix string
	sink   Sink
}

func New(prefix string, sink Sink) *Publisher {
	return &Publisher{prefix: prefix, sink: sink}
}

// Topic returns the topic a serial number publishes on.
func (p *Publisher) Topic(serial string) string {
	return p.prefix + "/" + serial
}

// PublishSnapshot implements poller.Publisher.
func (p *Publisher) PublishSnapshot(serial string, snap registers.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		klog.Errorf("publisher: encode snapshot for %s: %v", serial, err)
		return
	}

	topic := p.Topic(serial)
	klog.V(2).Infof("publish: %s %s", topic, payload)

	p.sink.Publish(topic, payload)
}
