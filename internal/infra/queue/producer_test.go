package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.key = key
	c.msg = msg
	return c.err
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "funnel.sql.created", RoutingKey(entity.EventSQLCreated))
	assert.Equal(t, "funnel.mql.removed", RoutingKey(entity.EventMQLRemoved))
}

func TestPublishFunnelEvent(t *testing.T) {
	ch := &recordingChannel{}
	p := &RabbitMQProducer{Ch: ch}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := p.PublishFunnelEvent(context.Background(), entity.FunnelEvent{
		Type:       entity.EventMQLCreated,
		LeadID:     "lead-1",
		MQLID:      "mql-1",
		OccurredAt: at,
	})
	require.NoError(t, err)

	assert.Equal(t, ExchangeName, ch.exchange)
	assert.Equal(t, "funnel.mql.created", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.Equal(t, "mql.created", ch.msg.Type)
	assert.True(t, at.Equal(ch.msg.Timestamp))

	var decoded entity.FunnelEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "lead-1", decoded.LeadID)
	assert.Equal(t, "mql-1", decoded.MQLID)
}

func TestPublishFunnelEventWrapsChannelError(t *testing.T) {
	cause := errors.New("channel closed")
	p := &RabbitMQProducer{Ch: &recordingChannel{err: cause}}

	err := p.PublishFunnelEvent(context.Background(), entity.FunnelEvent{Type: entity.EventSQLRemoved})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "sql.removed")
}
