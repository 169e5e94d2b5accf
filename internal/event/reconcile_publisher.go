package event

import (
	"context"
	"encoding/json"
	"fmt"
	"insurance-service/internal/models"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// publishChannel is the part of *amqp.Channel the publisher needs.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ReconcilePublisher publishes critical partial failures to ReconcileQueue,
// which ConnectRabbitMQ has declared. It satisfies services.ReconcileNotifier.
type ReconcilePublisher struct {
	channel publishChannel
	timeout time.Duration

	mu                sync.Mutex
	messagesPublished int64
	messagesFailed    int64
}

func NewReconcilePublisher(conn *RabbitMQConnection) *ReconcilePublisher {
	return &ReconcilePublisher{channel: conn.Channel, timeout: conn.PublishTimeout}
}

func (p *ReconcilePublisher) NotifyPartialFailure(ctx context.Context, failure *models.PartialFailureError) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	body, err := json.Marshal(NewReconcileEvent(failure, time.Now()))
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal reconcile event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",             // exchange
		ReconcileQueue, // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish reconcile event: %w", err)
	}

	p.messagesPublished++
	slog.Info("Reconcile event published",
		"queue", ReconcileQueue,
		"nro_poliza", failure.PolicyNumber,
		"failed_keys", failure.FailedKeys())
	return nil
}

// Stats returns published and failed message counts.
func (p *ReconcilePublisher) Stats() (published, failed int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messagesPublished, p.messagesFailed
}
