package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/reservation-scheduler/internal/application"
)

const publishTimeout = 5 * time.Second

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPPublisher publishes events as JSON to a topic exchange, routed by
// event type.
type AMQPPublisher struct {
	channel  Channel
	exchange string
	now      func() time.Time
}

// NewAMQPPublisher publishes through an already opened channel.
func NewAMQPPublisher(channel Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{channel: channel, exchange: exchange, now: time.Now}
}

// Record publishes the event. Events without an ID get a random one.
func (p *AMQPPublisher) Record(ctx context.Context, event application.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	body, err := json.Marshal(NewMessage(event))
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    p.now().UTC(),
		Type:         string(event.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}

// Connection owns the broker connection behind a publisher.
type Connection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// DialAMQP connects to the broker and declares a durable topic exchange.
func DialAMQP(url, exchange string) (*Connection, *AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open amqp channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &Connection{conn: conn, channel: ch}, NewAMQPPublisher(ch, exchange), nil
}

// Close closes the channel and the connection.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}
	if err := c.channel.Close(); err != nil {
		_ = c.conn.Close()
		return err
	}
	return c.conn.Close()
}
