package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"product-template-service/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const TemplateEventsQueue = "template_events"

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// TemplatePublisher sends registry events to the durable template_events queue.
// An amqp channel is not safe for concurrent publishing, so calls are serialized.
type TemplatePublisher struct {
	mu       sync.Mutex
	ch       channel
	declared bool

	published atomic.Int64
	failed    atomic.Int64
}

func NewTemplatePublisher(conn *RabbitMQConnection) *TemplatePublisher {
	return &TemplatePublisher{ch: conn.Channel}
}

func (p *TemplatePublisher) PublishTemplateEvent(ctx context.Context, event models.TemplateEvent) error {
	msg, err := buildPublishing(event)
	if err != nil {
		p.failed.Add(1)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared {
		if _, err := p.ch.QueueDeclare(TemplateEventsQueue, true, false, false, false, nil); err != nil {
			p.failed.Add(1)
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared = true
	}

	if err := p.ch.PublishWithContext(ctx, "", TemplateEventsQueue, false, false, msg); err != nil {
		p.failed.Add(1)
		return fmt.Errorf("failed to publish template event: %w", err)
	}

	p.published.Add(1)
	slog.Info("Template event published", "queue", TemplateEventsQueue, "type", event.Type, "template_id", event.TemplateID, "message_id", msg.MessageId)
	return nil
}

// Stats reports how many events were published and how many failed.
func (p *TemplatePublisher) Stats() (published, failed int64) {
	return p.published.Load(), p.failed.Load()
}

func buildPublishing(event models.TemplateEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal template event: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		Type:         string(event.Type),
		Timestamp:    event.At,
		Body:         body,
	}, nil
}
