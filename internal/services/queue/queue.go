package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	queueName   = "image_cleanup"
	maxAttempts = 3
)

// CleanupJob is one out-of-band storage reconciliation: delete the objects
// behind URLs a listing mutation dropped but the synchronous cleanup missed.
type CleanupJob struct {
	ListingID  int64     `json:"listing_id"`
	URLs       []string  `json:"urls"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Publisher is the side handlers see: fire-and-forget job submission.
type Publisher interface {
	PublishCleanup(ctx context.Context, job *CleanupJob) error
}

// NoopPublisher backs queue-less deployments; retry jobs are dropped and the
// orphan stays for manual reconciliation.
type NoopPublisher struct{}

func (NoopPublisher) PublishCleanup(context.Context, *CleanupJob) error { return nil }

type Service struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger
	deleter ImageDeleter
}

func NewService(rabbitmqURL string, deleter ImageDeleter, logger *zap.Logger) (*Service, error) {
	conn, err := amqp.Dial(rabbitmqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &Service{
		conn:    conn,
		channel: channel,
		logger:  logger,
		deleter: deleter,
	}, nil
}

func (q *Service) PublishCleanup(ctx context.Context, job *CleanupJob) error {
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now()
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal cleanup job: %w", err)
	}

	err = q.channel.Publish(
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         jobBytes,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish cleanup job: %w", err)
	}

	q.logger.Info("Cleanup job queued",
		zap.Int64("listing_id", job.ListingID),
		zap.Int("urls", len(job.URLs)),
		zap.Int("attempt", job.Attempts))
	return nil
}

// Close closes the queue connection.
func (q *Service) Close() error {
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
	return nil
}

// HealthCheck reports RabbitMQ availability.
func (q *Service) HealthCheck() string {
	if q.conn == nil || q.conn.IsClosed() {
		return "unhealthy: connection closed"
	}
	if q.channel == nil {
		return "unhealthy: channel not available"
	}
	return "healthy"
}
