package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/agency-funnel/internal/entity"
)

// SalesNotifier tells the sales team a lead became sales-qualified.
type SalesNotifier interface {
	NotifySalesQualified(ctx context.Context, event entity.FunnelEvent) error
}

type Worker struct {
	Channel  *amqp.Channel
	Notifier SalesNotifier
	Logger   *zap.Logger
}

func NewWorker(ch *amqp.Channel, notifier SalesNotifier, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, Notifier: notifier, Logger: logger}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("funnel worker listening", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event entity.FunnelEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		// malformed; dead-letter it instead of blocking the queue
		w.Logger.Error("invalid funnel event", zap.Error(err))
		d.Nack(false, false)
		return
	}

	if err := w.processMessage(ctx, event); err != nil {
		w.Logger.Error("funnel event failed",
			zap.String("type", string(event.Type)),
			zap.String("lead_id", event.LeadID),
			zap.Error(err),
		)
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

func (w *Worker) processMessage(ctx context.Context, event entity.FunnelEvent) error {
	switch event.Type {
	case entity.EventSQLCreated:
		if w.Notifier == nil {
			w.Logger.Debug("no sales notifier configured", zap.String("sql_id", event.SQLID))
			return nil
		}
		return w.Notifier.NotifySalesQualified(ctx, event)
	default:
		// other transitions are only of interest to analytics consumers
		w.Logger.Debug("funnel event ignored", zap.String("type", string(event.Type)))
		return nil
	}
}
