// Package dispatch hands alerts that cannot be sent over SMS to a
// durable operator queue for manual delivery.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// ManualDispatch is the payload queued for an operator when the SMS
// channel is unavailable: the destination and the fully formatted
// alert body, ready to forward as-is.
type ManualDispatch struct {
	ReportID      string    `json:"report_id"`
	ContactNumber string    `json:"contact_number"`
	Body          string    `json:"body"`
	QueuedAt      time.Time `json:"queued_at"`
}

// Publisher represents a RabbitMQ publisher for the dispatch queue
type Publisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

// NewPublisher connects to RabbitMQ and declares the dispatch exchange
func NewPublisher(amqpURL, exchangeName, routingKey string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchangeName, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchangeName,
		routingKey: routingKey,
	}, nil
}

// Publish queues one alert for manual dispatch. The message is
// persistent so a broker restart does not drop it.
func (p *Publisher) Publish(ctx context.Context, msg ManualDispatch) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch message: %w", err)
	}

	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}

	if err := p.channel.Publish(
		p.exchange,   // exchange
		p.routingKey, // routing key
		false,        // mandatory
		false,        // immediate
		publishing,   // message
	); err != nil {
		return fmt.Errorf("failed to publish dispatch message: %w", err)
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while publishing dispatch message: %w", ctx.Err())
	default:
	}
	return nil
}

// IsConnected checks if the publisher connection is still alive
func (p *Publisher) IsConnected() bool {
	return p.conn != nil && !p.conn.IsClosed()
}

// Close closes the channel and connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}
