package event

import (
	"testing"

	"product-template-service/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerURL_EscapesCredentials(t *testing.T) {
	raw := brokerURL(config.RabbitMQConfig{Host: "mq.internal", Port: "5672", Username: "svc", Password: "p@ss/w:rd"})

	uri, err := amqp.ParseURI(raw)
	require.NoError(t, err)
	assert.Equal(t, "mq.internal", uri.Host)
	assert.Equal(t, 5672, uri.Port)
	assert.Equal(t, "svc", uri.Username)
	assert.Equal(t, "p@ss/w:rd", uri.Password)
}

func TestWatchClose_ReturnsOnGracefulClose(t *testing.T) {
	closed := make(chan *amqp.Error, 1)
	close(closed)
	watchClose(closed)

	lost := make(chan *amqp.Error, 1)
	lost <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker shutdown", Server: true}
	watchClose(lost)
}

func TestClose_WithoutBrokerIsANoop(t *testing.T) {
	assert.NoError(t, (&RabbitMQConnection{}).Close())
}
