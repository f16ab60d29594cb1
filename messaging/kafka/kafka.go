// Package kafka adapts a franz-go producer to the messaging contract.
// Attributes map to Kafka record headers.
package kafka

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/ourritual/sdk-go/messaging"
)

type Config struct {
	Brokers  []string
	ClientID string
	TLS      *tls.Config
}

// Producer is a Kafka-backed messaging.Client.
type Producer struct {
	cl *kgo.Client
}

var _ messaging.Client = (*Producer)(nil)

// New builds a franz-go backed Producer. The returned cleanup closes the
// client.
func New(cfg Config) (*Producer, func(), error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil, fmt.Errorf("kafka brokers required")
	}
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Brokers...)}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.TLS != nil {
		opts = append(opts, kgo.DialTLSConfig(cfg.TLS))
	}
	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka client init: %w", err)
	}
	return &Producer{cl: cl}, func() { cl.Close() }, nil
}

func (p *Producer) Publish(topic string, data []byte, attributes map[string]string) error {
	rec := &kgo.Record{Topic: topic, Value: data}
	if len(attributes) > 0 {
		rec.Headers = make([]kgo.RecordHeader, 0, len(attributes))
		for k, v := range attributes {
			rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
		}
	}
	return p.cl.ProduceSync(context.Background(), rec).FirstErr()
}
