package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

func (q *QueueService) PublishBatchEvent(ctx context.Context, event *models.BatchEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = q.channel.Publish(
		"",          // exchange
		q.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    event.BatchID,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		q.failed.Add(1)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	q.published.Add(1)

	q.logger.Debug("Batch event published",
		zap.String("batch_id", event.BatchID),
		zap.String("status", event.Status))
	return nil
}
