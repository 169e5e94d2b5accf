package event

import (
	"fmt"
	"insurance-service/internal/config"
	"log/slog"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQConnection is a broker connection with the reconcile queue already
// declared on its channel.
type RabbitMQConnection struct {
	Connection     *amqp.Connection
	Channel        *amqp.Channel
	PublishTimeout time.Duration
}

type queueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

func brokerURI(cfg config.RabbitMQConfig) (string, error) {
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return "", fmt.Errorf("invalid RabbitMQ port %q: %w", cfg.Port, err)
	}
	vhost := cfg.VHost
	if vhost == "" {
		vhost = "/"
	}
	return amqp.URI{
		Scheme:   "amqp",
		Host:     cfg.Host,
		Port:     port,
		Username: cfg.Username,
		Password: cfg.Password,
		Vhost:    vhost,
	}.String(), nil
}

// declareReconcileQueue makes ReconcileQueue durable so alerts survive a
// broker restart until an operator drains them.
func declareReconcileQueue(ch queueDeclarer) error {
	_, err := ch.QueueDeclare(
		ReconcileQueue, // queue name
		true,           // durable
		false,          // delete when unused
		false,          // exclusive
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", ReconcileQueue, err)
	}
	return nil
}

// ConnectRabbitMQ dials the broker, opens a channel and declares the
// reconcile queue on it.
func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	uri, err := brokerURI(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(uri, amqp.Config{
		Heartbeat: cfg.Heartbeat,
		Properties: amqp.Table{
			"connection_name": "insurance-service reconcile publisher",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareReconcileQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	slog.Info("Connected to RabbitMQ",
		"host", cfg.Host,
		"port", cfg.Port,
		"queue", ReconcileQueue,
		"publish_timeout", cfg.PublishTimeout)
	return &RabbitMQConnection{Connection: conn, Channel: ch, PublishTimeout: cfg.PublishTimeout}, nil
}

func (r *RabbitMQConnection) Close() error {
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			slog.Error("failed to close RabbitMQ channel", "error", err)
		}
	}
	if r.Connection != nil {
		if err := r.Connection.Close(); err != nil {
			slog.Error("failed to close RabbitMQ connection", "error", err)
			return err
		}
	}
	slog.Info("RabbitMQ connection closed")
	return nil
}
