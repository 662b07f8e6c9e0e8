package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"product-template-service/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declares   int
	declareErr error
	publishErr error
	keys       []string
	messages   []amqp.Publishing
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declares++
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.messages = append(f.messages, msg)
	return nil
}

func TestTemplatePublisher_PublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := &TemplatePublisher{ch: ch}
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	event := models.TemplateEvent{Type: models.EventTemplateDeployed, TemplateID: 7, Actor: "admin", Status: models.TemplateActive, Version: 2, At: at}
	require.NoError(t, p.PublishTemplateEvent(context.Background(), event))
	require.NoError(t, p.PublishTemplateEvent(context.Background(), event))

	assert.Equal(t, 1, ch.declares, "queue is declared once")
	assert.Equal(t, []string{TemplateEventsQueue, TemplateEventsQueue}, ch.keys)

	msg := ch.messages[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, string(models.EventTemplateDeployed), msg.Type)
	assert.Equal(t, at, msg.Timestamp)
	_, err := uuid.Parse(msg.MessageId)
	assert.NoError(t, err)
	assert.NotEqual(t, msg.MessageId, ch.messages[1].MessageId)

	var decoded models.TemplateEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, event, decoded)

	published, failed := p.Stats()
	assert.Equal(t, int64(2), published)
	assert.Zero(t, failed)
}

func TestTemplatePublisher_Failures(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("channel closed")}
	p := &TemplatePublisher{ch: ch}
	assert.Error(t, p.PublishTemplateEvent(context.Background(), models.TemplateEvent{Type: models.EventTemplateCreated}))

	ch.declareErr = nil
	ch.publishErr = errors.New("flow control")
	assert.Error(t, p.PublishTemplateEvent(context.Background(), models.TemplateEvent{Type: models.EventTemplateCreated}))
	assert.Equal(t, 2, ch.declares, "declare retried after failure")

	published, failed := p.Stats()
	assert.Zero(t, published)
	assert.Equal(t, int64(2), failed)
}
