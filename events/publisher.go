package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-ordering/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

// AMQPPublisher publishes order events as persistent JSON messages to a
// durable queue on the default exchange.
type AMQPPublisher struct {
	mu    sync.Mutex
	ch    *amqp.Channel
	queue string
}

func NewAMQPPublisher(conn *amqp.Connection, queue string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("conn.Channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("ch.QueueDeclare: %w", err)
	}

	return &AMQPPublisher{ch: ch, queue: q.Name}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			MessageId:    event.OrderID.Hex() + ":" + event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("ch.Publish: %w", err)
	}

	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}

// NoopPublisher drops events. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, event models.OrderEvent) error {
	log.Debug().
		Str("type", event.Type).
		Str("order_id", event.OrderID.Hex()).
		Msg("order event dropped, no broker configured")
	return nil
}

// NewEvent stamps an event for order with the current time.
func NewEvent(eventType string, order models.Order, status models.OrderStatus) models.OrderEvent {
	return models.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		UserID:     order.UserID,
		BusinessID: order.BusinessID,
		Status:     status,
		OccurredAt: time.Now().UTC(),
	}
}
