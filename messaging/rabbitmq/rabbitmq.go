// Package rabbitmq adapts an AMQP channel to the messaging contract.
// Attributes map to AMQP headers; the topic is used as the routing key on a
// durable topic exchange.
package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ourritual/sdk-go/messaging"
)

const defaultExchange = "integration"

type Config struct {
	URL         string
	Exchange    string
	ConnTimeout time.Duration
}

// Publisher is an AMQP-backed messaging.Client.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

var _ messaging.Client = (*Publisher)(nil)

// Dial connects to RabbitMQ, declares the exchange, and returns a Publisher
// and a cleanup.
func Dial(cfg Config) (*Publisher, func(), error) {
	if cfg.URL == "" {
		return nil, nil, fmt.Errorf("rabbitmq url required")
	}
	if cfg.Exchange == "" {
		cfg.Exchange = defaultExchange
	}

	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Locale: "en_US",
		Dial:   amqp.DefaultDial(cfg.ConnTimeout),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	p := &Publisher{conn: conn, ch: ch, exchange: cfg.Exchange}
	cleanup := func() { p.close() }
	return p, cleanup, nil
}

func (p *Publisher) Publish(topic string, data []byte, attributes map[string]string) error {
	var headers amqp.Table
	if len(attributes) > 0 {
		headers = amqp.Table{}
		for k, v := range attributes {
			headers[k] = v
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return fmt.Errorf("rabbitmq publisher closed")
	}
	return p.ch.PublishWithContext(
		context.Background(),
		p.exchange,
		topic,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Headers:      headers,
			ContentType:  "application/json",
			Body:         data,
		},
	)
}

func (p *Publisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
