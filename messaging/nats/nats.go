// Package nats adapts a NATS connection to the messaging contract.
package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ourritual/sdk-go/logging"
	"github.com/ourritual/sdk-go/messaging"
)

type Config struct {
	URL           string
	Name          string
	ConnTimeout   time.Duration
	MaxReconnects int
}

// Conn wraps a NATS connection as a messaging.Client.
type Conn struct {
	nc *nats.Conn
}

var _ messaging.Client = (*Conn)(nil)

// Connect dials NATS and returns a Conn and a cleanup.
func Connect(cfg Config) (*Conn, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("nats url required")
	}

	opts := []nats.Option{}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	if cfg.ConnTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnTimeout))
	}
	if cfg.MaxReconnects != 0 {
		opts = append(opts, nats.MaxReconnects(cfg.MaxReconnects))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats connect: %w", err)
	}

	conn := &Conn{nc: nc}
	cleanup := func() {
		if !nc.IsClosed() {
			_ = nc.Drain()
			nc.Close()
		}
	}
	return conn, cleanup, nil
}

// Publish sends data to a subject with the attributes as message headers.
func (c *Conn) Publish(topic string, data []byte, attributes map[string]string) error {
	msg := &nats.Msg{Subject: topic, Data: data}
	if len(attributes) > 0 {
		msg.Header = nats.Header{}
		for k, v := range attributes {
			msg.Header.Add(k, v)
		}
	}
	if err := c.nc.PublishMsg(msg); err != nil {
		return err
	}
	return c.nc.Flush()
}

// Subscribe delivers each message on the subject to h. Wrap h with
// messaging.WrapHandler to recover the propagated context per delivery.
// The returned function unsubscribes.
func (c *Conn) Subscribe(topic string, h messaging.Handler) (func(), error) {
	sub, err := c.nc.Subscribe(topic, func(m *nats.Msg) {
		attrs := make(map[string]string, len(m.Header))
		for k, vs := range m.Header {
			if len(vs) > 0 {
				attrs[k] = vs[0]
			}
		}
		if err := h(context.Background(), messaging.NewMessage(m.Data, attrs)); err != nil {
			logging.Error(err, "message handler failed", "subject", topic)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", topic, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}
