package queue

import "fmt"

// GetQueueStats reports batch events still waiting in the broker next to
// what this process has published since it started.
func (q *QueueService) GetQueueStats() (map[string]interface{}, error) {
	queueInfo, err := q.channel.QueueInspect(q.queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect event queue %s: %w", q.queueName, err)
	}

	return map[string]interface{}{
		"queue":            queueInfo.Name,
		"pending_events":   queueInfo.Messages,
		"consumers":        queueInfo.Consumers,
		"events_published": q.published.Load(),
		"publish_failures": q.failed.Load(),
	}, nil
}

// HealthCheck reports the broker connection. Events are best-effort, so
// failed publishes alone do not make the service unhealthy.
func (q *QueueService) HealthCheck() string {
	switch {
	case q.conn == nil || q.conn.IsClosed():
		return "unhealthy: connection to event broker closed"
	case q.channel == nil:
		return "unhealthy: no channel for " + q.queueName
	default:
		return "healthy"
	}
}
