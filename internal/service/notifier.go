package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"lingo-server/internal/models"
)

// JobUpdate is the notification payload published after a job reaches a
// terminal state.
type JobUpdate struct {
	JobID         uuid.UUID        `json:"jobId"`
	UserID        uuid.UUID        `json:"userId"`
	Status        models.JobStatus `json:"status"`
	StoryID       *uuid.UUID       `json:"storyId,omitempty"`
	FailureReason *string          `json:"failureReason,omitempty"`
}

// Notifier publishes job state updates for downstream consumers.
type Notifier interface {
	NotifyJobUpdate(ctx context.Context, update JobUpdate) error
}

type rabbitMQNotifier struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQNotifier declares the updates queue and returns a notifier
// publishing to it. The channel is owned by the caller and closed there.
func NewRabbitMQNotifier(ch *amqp.Channel, queueName string, logger *zap.Logger) (Notifier, error) {
	_, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare notification queue %q: %w", queueName, err)
	}

	logger.Info("Notification queue declared", zap.String("queue", queueName))
	return &rabbitMQNotifier{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("notifier"),
	}, nil
}

func (n *rabbitMQNotifier) NotifyJobUpdate(ctx context.Context, update JobUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal job update for %s: %w", update.JobID, err)
	}

	err = n.channel.PublishWithContext(ctx,
		"",
		n.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        "lingo-server",
			MessageId:    update.JobID.String() + "-update",
		},
	)
	if err != nil {
		n.logger.Error("Failed to publish job update",
			zap.String("job_id", update.JobID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to publish job update for %s: %w", update.JobID, err)
	}

	n.logger.Debug("Job update published",
		zap.String("job_id", update.JobID.String()),
		zap.String("status", string(update.Status)))
	return nil
}

// NopNotifier is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) NotifyJobUpdate(context.Context, JobUpdate) error { return nil }
