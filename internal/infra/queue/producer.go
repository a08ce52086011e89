package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

// publisher is the part of *amqp.Channel the producer needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

// RoutingKey maps an event type to its topic, e.g. "funnel.sql.created".
func RoutingKey(t entity.FunnelEventType) string {
	return routingKeyPrefix + string(t)
}

func (p *RabbitMQProducer) PublishFunnelEvent(ctx context.Context, event entity.FunnelEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal funnel event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey(event.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}
