// Package events publishes order lifecycle changes to RabbitMQ so other
// consumers (notification workers, dashboards) see them as they happen.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aurastore/storefront/core/order"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrderCreatedQueue = "order.created"
	OrderUpdatedQueue = "order.updated"
)

type OrderEvent struct {
	EventType     string      `json:"eventType"`
	OrderID       string      `json:"orderId"`
	Reference     string      `json:"reference"`
	UserID        *string     `json:"userId"`
	CustomerEmail string      `json:"customerEmail"`
	Total         int         `json:"total"`
	Status        string      `json:"status"`
	Items         order.Items `json:"items,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher opens a channel and declares the queues up front so a
// publish never fails on missing infrastructure.
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	for _, queue := range []string{OrderCreatedQueue, OrderUpdatedQueue} {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("declaring %s: %w", queue, err)
		}
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) OrderCreated(ctx context.Context, ord order.Order) error {
	ev := OrderEvent{
		EventType:     "OrderCreated",
		OrderID:       ord.ID,
		Reference:     ord.Reference,
		UserID:        ord.UserID,
		CustomerEmail: ord.CustomerEmail,
		Total:         ord.Total,
		Status:        string(ord.Status),
		Items:         ord.Items,
		Timestamp:     time.Now().UTC(),
	}

	return p.publish(ctx, OrderCreatedQueue, ev)
}

func (p *Publisher) OrderUpdated(ctx context.Context, ord order.Order) error {
	ev := OrderEvent{
		EventType:     "OrderUpdated",
		OrderID:       ord.ID,
		Reference:     ord.Reference,
		UserID:        ord.UserID,
		CustomerEmail: ord.CustomerEmail,
		Total:         ord.Total,
		Status:        string(ord.Status),
		Timestamp:     time.Now().UTC(),
	}

	return p.publish(ctx, OrderUpdatedQueue, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", ev.EventType, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(
		pubCtx,
		"",    // default exchange
		queue, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", queue, err)
	}

	return nil
}
