package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Publisher sends raw payloads to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NATSForwarder republishes every dispatched event to
// "<prefix>.<event type>".
type NATSForwarder struct {
	dispatcher Dispatcher
	publisher  Publisher
	prefix     string
	logger     *zap.Logger
}

// NewNATSForwarder wires a forwarder. It does nothing until RegisterHandlers
// is called.
func NewNATSForwarder(dispatcher Dispatcher, publisher Publisher, prefix string, logger *zap.Logger) *NATSForwarder {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = "servicedesk"
	}
	return &NATSForwarder{dispatcher: dispatcher, publisher: publisher, prefix: prefix, logger: logger}
}

// RegisterHandlers subscribes the forwarder to every event type.
func (f *NATSForwarder) RegisterHandlers() {
	if f == nil || f.dispatcher == nil || f.publisher == nil {
		return
	}
	for _, eventType := range EventTypes {
		f.dispatcher.Subscribe(eventType, f.forward)
	}
}

// Subject returns the subject an event type is published on.
func (f *NATSForwarder) Subject(eventType EventType) string {
	return f.prefix + "." + string(eventType)
}

func (f *NATSForwarder) forward(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	subject := f.Subject(event.Type)
	if err := f.publisher.Publish(ctx, subject, data); err != nil {
		return err
	}
	f.logger.Debug("event forwarded", zap.String("subject", subject), zap.String("event_id", event.ID))
	return nil
}

// Bus is a JetStream backed Publisher.
type Bus struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// ConnectBus dials NATS and makes sure a stream captures "<prefix>.>".
func ConnectBus(url, prefix string, opts ...nats.Option) (*Bus, error) {
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	opts = append([]nats.Option{nats.Name("servicedesk"), nats.Timeout(5 * time.Second)}, opts...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	stream := strings.ToUpper(strings.ReplaceAll(prefix, ".", "_"))
	if _, err := js.StreamInfo(stream); errors.Is(err, nats.ErrStreamNotFound) {
		if _, err := js.AddStream(&nats.StreamConfig{
			Name:     stream,
			Subjects: []string{prefix + ".>"},
		}); err != nil {
			nc.Close()
			return nil, err
		}
	} else if err != nil {
		nc.Close()
		return nil, err
	}

	return &Bus{conn: nc, js: js}, nil
}

// Publish sends data on subj.
func (b *Bus) Publish(ctx context.Context, subj string, data []byte) error {
	if b == nil {
		return errors.New("nil bus")
	}
	_, err := b.js.Publish(subj, data, nats.Context(ctx))
	return err
}

// Close drains the connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}
