package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dispatchJob is the wire format consumed by the delivery workers.
type dispatchJob struct {
	StudentID int       `json:"student_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel"`
	QueuedAt  time.Time `json:"queued_at"`
}

// RedisQueueTransport enqueues notifications on a Redis list consumed by the
// external delivery infrastructure.
type RedisQueueTransport struct {
	rdb   *redis.Client
	queue string
}

// NewRedisQueueTransport creates a transport that pushes to the given queue.
func NewRedisQueueTransport(rdb *redis.Client, queue string) *RedisQueueTransport {
	return &RedisQueueTransport{rdb: rdb, queue: queue}
}

// Send enqueues one notification job.
func (t *RedisQueueTransport) Send(ctx context.Context, studentID int, title, message, channel string) error {
	raw, err := json.Marshal(dispatchJob{
		StudentID: studentID,
		Title:     title,
		Message:   message,
		Channel:   channel,
		QueuedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := t.rdb.RPush(ctx, t.queue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}
