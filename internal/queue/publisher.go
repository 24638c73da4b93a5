// Package queue publishes spot lifecycle events to RabbitMQ for consumers
// that cannot hold a websocket open (reporting, billing, enforcement jobs).
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"parkwatch/internal/config"
	"parkwatch/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
)

// SpotEvent is the broker payload. Data carries the changed sub-state only,
// never the full spot document.
type SpotEvent struct {
	Event     string                 `json:"event"`
	SpotID    string                 `json:"spot_id"`
	Section   string                 `json:"section"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

type Publisher struct {
	cfg    *config.QueueConfig
	log    *logger.Logger
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

func NewPublisher(cfg *config.QueueConfig, log *logger.Logger) (*Publisher, error) {
	p := &Publisher{cfg: cfg, log: log}
	if !cfg.Enabled {
		return p, nil
	}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("rabbitmq channel open failed: %w", err)
	}

	// Durable topic exchange so consumers can bind per event kind.
	if err := ch.ExchangeDeclare(p.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("rabbitmq exchange declare failed: %w", err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

// Publish sends a spot event. Failures are logged and returned so callers may
// ignore them; a broker outage must never fail the originating request.
func (p *Publisher) Publish(ctx context.Context, event SpotEvent) error {
	if !p.cfg.Enabled {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.ch == nil {
		return fmt.Errorf("rabbitmq publisher closed")
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		p.cfg.Exchange,
		event.Event,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		p.log.WithError(err).WithSpotID(event.SpotID).Warn("Failed to publish spot event")
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
