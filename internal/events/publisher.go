// Package events publishes service lifecycle and AI usage events to an
// AMQP exchange for external observers (dashboards, billing). The
// publisher is optional: a nil *Publisher is a valid no-op, and event
// delivery failures never fail the request that produced them.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Publisher struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

// NewPublisher dials the broker and declares a durable direct exchange
// bound to a durable queue.
func NewPublisher(url, exchangeName, queueName string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &Publisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := p.setup(); err != nil {
		p.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return p, nil
}

func (p *Publisher) setup() error {
	err := p.channel.ExchangeDeclare(
		p.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = p.channel.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = p.channel.QueueBind(
		p.queueName,
		p.queueName, // routing key mirrors the queue name for direct exchanges
		p.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishLaunchTransition publishes a startup state change. Nil
// receivers no-op so callers can run without a broker.
func (p *Publisher) PublishLaunchTransition(ctx context.Context, from, to string) error {
	if p == nil {
		return nil
	}
	msg := NewLaunchTransitionMessage(from, to)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal launch transition: %w", err)
	}
	if err := p.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published launch transition event", "from", from, "to", to)
	return nil
}

// PublishAIUsage publishes a text-generation usage event.
func (p *Publisher) PublishAIUsage(ctx context.Context, kind string, sampleSize int, cached bool) error {
	if p == nil {
		return nil
	}
	msg := NewAIUsageMessage(kind, sampleSize, cached)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal AI usage: %w", err)
	}
	if err := p.publish(ctx, body); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Published AI usage event",
		"kind", kind, "sample_size", sampleSize, "cached", cached)
	return nil
}

func (p *Publisher) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.channel.PublishWithContext(
		ctx,
		p.exchangeName,
		p.queueName,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
