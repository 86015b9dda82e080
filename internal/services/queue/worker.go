package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/propstack/property-media/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ImageDeleter is the slice of the storage service the worker needs.
type ImageDeleter interface {
	DeleteImages(ctx context.Context, urls []string) *models.CleanupResult
}

// StartWorker consumes cleanup jobs until the context ends. Jobs that still
// fail are re-published with a bumped attempt counter up to maxAttempts, then
// dropped with a log line for the operator.
func (q *Service) StartWorker(ctx context.Context, workerID int) error {
	msgs, err := q.channel.Consume(
		queueName,                                  // queue
		fmt.Sprintf("cleanup-worker-%d", workerID), // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	q.logger.Info("Cleanup worker started", zap.Int("worker_id", workerID))

	go func() {
		for {
			select {
			case <-ctx.Done():
				q.logger.Info("Cleanup worker stopping", zap.Int("worker_id", workerID))
				return
			case msg, ok := <-msgs:
				if !ok {
					q.logger.Warn("Message channel closed", zap.Int("worker_id", workerID))
					return
				}
				q.processMessage(ctx, msg)
			}
		}
	}()

	return nil
}

func (q *Service) processMessage(ctx context.Context, msg amqp.Delivery) {
	var job CleanupJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		q.logger.Error("Failed to unmarshal cleanup job", zap.Error(err))
		msg.Nack(false, false) // don't requeue malformed messages
		return
	}

	result := q.deleter.DeleteImages(ctx, job.URLs)

	if result.ErrorCount > 0 && job.Attempts+1 < maxAttempts {
		retry := job
		retry.Attempts++
		if err := q.PublishCleanup(ctx, &retry); err != nil {
			q.logger.Error("Failed to requeue cleanup job",
				zap.Int64("listing_id", job.ListingID),
				zap.Error(err))
		}
	} else if result.ErrorCount > 0 {
		q.logger.Error("Cleanup job exhausted retries, orphans remain",
			zap.Int64("listing_id", job.ListingID),
			zap.Strings("errors", result.Errors))
	} else {
		q.logger.Info("Cleanup job completed",
			zap.Int64("listing_id", job.ListingID),
			zap.Int("deleted", result.SuccessCount))
	}

	if err := msg.Ack(false); err != nil {
		q.logger.Error("Failed to ack cleanup message", zap.Error(err))
	}
}
