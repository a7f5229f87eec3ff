package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avast/retry-go/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/stakelab-io/stake-ledger/internal/config"
	"github.com/stakelab-io/stake-ledger/internal/observability/metrics"
)

// QueueManager publishes staking events to a RabbitMQ queue. Publishing is
// best effort from the caller's point of view: failures are retried, counted
// and surfaced, but never roll back the ledger transition that produced the
// event.
type QueueManager struct {
	cfg     *config.QueueConfig
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
}

func NewQueueManager(cfg *config.QueueConfig, logger *zap.Logger) (*QueueManager, error) {
	amqpURI := fmt.Sprintf("amqp://%s:%s@%s", cfg.User, cfg.Password, cfg.Url)

	conn, err := amqp.Dial(amqpURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		cfg.QueueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", cfg.QueueName, err)
	}

	return &QueueManager{
		cfg:     cfg,
		conn:    conn,
		channel: channel,
		logger:  logger.With(zap.String("module", "queue")),
	}, nil
}

// PushStakingEvent publishes the event as a persistent JSON message,
// retrying transient failures per the queue config.
func (qm *QueueManager) PushStakingEvent(ctx context.Context, event *StakingEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal staking event: %w", err)
	}

	err = retry.Do(
		func() error {
			publishCtx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
			defer cancel()

			return qm.channel.PublishWithContext(
				publishCtx,
				"",               // default exchange
				qm.cfg.QueueName, // routing key
				false,            // mandatory
				false,            // immediate
				amqp.Publishing{
					ContentType:  "application/json",
					DeliveryMode: amqp.Persistent,
					Body:         body,
				},
			)
		},
		retry.Context(ctx),
		retry.Attempts(qm.cfg.MaxRetryAttempts),
		retry.Delay(qm.cfg.RetryInterval),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		metrics.RecordQueueSendError()
		qm.logger.Error("failed to publish staking event",
			zap.String("event_type", event.EventType.String()),
			zap.String("participant", event.Participant),
			zap.Error(err),
		)
		return fmt.Errorf("failed to publish staking event: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	qm.logger.Info("Shutting down queue manager")

	if err := qm.channel.Close(); err != nil {
		qm.logger.Error("failed to close rabbitmq channel", zap.Error(err))
	}
	if err := qm.conn.Close(); err != nil {
		qm.logger.Error("failed to close rabbitmq connection", zap.Error(err))
	}
}
