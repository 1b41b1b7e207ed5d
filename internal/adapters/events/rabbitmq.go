package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"camerpulse-feed/internal/domain"
	"camerpulse-feed/internal/infra/metrics"
)

// RabbitPublisher forwards interaction events to a durable AMQP queue for
// the analytics worker.
type RabbitPublisher struct {
	ch    *amqp.Channel
	queue string
}

var _ domain.EventPublisher = (*RabbitPublisher)(nil)

// NewRabbitPublisher opens a channel and declares the queue.
func NewRabbitPublisher(conn *amqp.Connection, queue string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &RabbitPublisher{ch: ch, queue: queue}, nil
}

// Publish sends one event. Best-effort; the caller treats failure as
// non-fatal because the durable Postgres row already exists.
func (p *RabbitPublisher) Publish(ctx context.Context, event domain.InteractionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	start := time.Now()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Body:         body,
	})
	metrics.ObserveNetworkRequest("rabbitmq", "publish", p.queue, start, err)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close releases the channel.
func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

// RabbitConsumer delivers interaction events to a handler, one at a time.
type RabbitConsumer struct {
	ch    *amqp.Channel
	queue string
	log   zerolog.Logger
}

// NewRabbitConsumer opens a channel and declares the queue.
func NewRabbitConsumer(conn *amqp.Connection, queue string, logger zerolog.Logger) (*RabbitConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &RabbitConsumer{ch: ch, queue: queue, log: logger}, nil
}

// Consume blocks until the context is canceled or the channel closes.
// Handler errors drop the message; implicit preference tuning tolerates
// losses the same way the tracker does.
func (c *RabbitConsumer) Consume(ctx context.Context, handle func(context.Context, domain.InteractionEvent) error) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("queue %s: delivery channel closed", c.queue)
			}
			var event domain.InteractionEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				c.log.Warn().Err(err).Str("message_id", d.MessageId).Msg("events: undecodable message dropped")
				_ = d.Nack(false, false)
				continue
			}
			if err := handle(ctx, event); err != nil {
				c.log.Warn().Err(err).Str("event_id", event.ID).Msg("events: handler failed, message dropped")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Close releases the channel.
func (c *RabbitConsumer) Close() error {
	return c.ch.Close()
}
