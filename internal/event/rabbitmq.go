package event

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"product-template-service/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConnectionName is reported to the broker so the management UI can tell
// this service's connection apart from the other consumers.
const ConnectionName = "product-template-service"

const heartbeat = 10 * time.Second

// RabbitMQConnection owns the broker connection and the single channel the
// template publisher writes to.
type RabbitMQConnection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

// brokerURL builds the AMQP URL for the default vhost. Credentials are
// escaped so passwords containing '@' or '/' survive.
func brokerURL(cfg config.RabbitMQConfig) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   "/",
	}
	return u.String()
}

// ConnectRabbitMQ dials the broker and opens the publishing channel. A
// connection dropped by the broker later is logged; publishes fail from then
// on and the registry keeps working without events.
func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	conn, err := amqp.DialConfig(brokerURL(cfg), amqp.Config{
		Heartbeat:  heartbeat,
		Properties: amqp.Table{"connection_name": ConnectionName},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s: %w", net.JoinHostPort(cfg.Host, cfg.Port), err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	go watchClose(conn.NotifyClose(make(chan *amqp.Error, 1)))

	slog.Info("Connected to RabbitMQ", "host", cfg.Host, "port", cfg.Port, "connection_name", ConnectionName)
	return &RabbitMQConnection{Connection: conn, Channel: ch}, nil
}

// watchClose reports a broker-initiated close. A graceful Close closes the
// channel without an error value.
func watchClose(closed <-chan *amqp.Error) {
	if err, ok := <-closed; ok && err != nil {
		slog.Warn("RabbitMQ connection lost, template events will not be published",
			"code", err.Code, "reason", err.Reason, "server", err.Server)
	}
}

// Close shuts the channel and then the connection. A channel error is only
// logged so the connection still gets closed.
func (r *RabbitMQConnection) Close() error {
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			slog.Error("failed to close RabbitMQ channel", "error", err)
		}
	}
	if r.Connection != nil {
		if err := r.Connection.Close(); err != nil {
			return fmt.Errorf("failed to close RabbitMQ connection: %w", err)
		}
	}
	slog.Info("RabbitMQ connection closed", "connection_name", ConnectionName)
	return nil
}
