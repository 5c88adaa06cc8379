package queue

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
)

// InspectionNotifier delivers a report to the people who act on it.
type InspectionNotifier interface {
	SendInspectionReport(ctx context.Context, report entity.InspectionReport) error
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  consumer
	Notifier InspectionNotifier
	Log      zerolog.Logger
}

func NewWorker(ch consumer, notifier InspectionNotifier, log zerolog.Logger) *Worker {
	return &Worker{Channel: ch, Notifier: notifier, Log: log}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue: register consumer: %w", err)
	}

	w.Log.Info().Str("queue", queueName).Msg("[WORKER] inspection worker waiting for reports")

	for {
		select {
		case <-ctx.Done():
			w.Log.Info().Msg("[WORKER] inspection worker stopped")
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("queue: delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var report entity.InspectionReport
	if err := json.Unmarshal(d.Body, &report); err != nil {
		w.Log.Error().Err(err).Str("message_id", d.MessageId).Msg("[WORKER] malformed inspection report")
		// Malformed messages never succeed, so they go straight to the DLQ.
		_ = d.Nack(false, false)
		return
	}

	if err := w.Notifier.SendInspectionReport(ctx, report); err != nil {
		w.Log.Error().Err(err).Str("run_id", report.RunID).Msg("[WORKER] inspection notification failed")
		_ = d.Nack(false, false)
		return
	}

	w.Log.Info().Str("run_id", report.RunID).Msg("[WORKER] inspection report delivered")
	_ = d.Ack(false)
}
