package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/xavierca1/crm-sync/internal/entity"
)

// channelPublisher is the subset of *amqp.Channel the producer needs.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch  channelPublisher
	Log zerolog.Logger
}

func NewProducer(ch channelPublisher, log zerolog.Logger) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch, Log: log}
}

// PublishInspectionReport hands the report to the notifier queue.
func (p *RabbitMQProducer) PublishInspectionReport(ctx context.Context, report entity.InspectionReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("queue: encode inspection report: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    report.RunID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("queue: publish inspection report: %w", err)
	}

	p.Log.Info().
		Str("run_id", report.RunID).
		Int("flagged", report.Categories.Total()).
		Msg("inspection report published")
	return nil
}
