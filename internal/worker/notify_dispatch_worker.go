package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/tahfidzid/mutqin-backend/internal/config"
	"github.com/tahfidzid/mutqin-backend/internal/notifier"
)

const NotifyPollTimeout = 1 * time.Second

// NotifyDispatchWorker drains the notification queue and hands each job to a
// delivery transport. Publication never waits for delivery; this worker is
// the consuming end of that queue.
type NotifyDispatchWorker struct {
	rdb      *redis.Client
	delivery notifier.Transport
	log      zerolog.Logger
}

func NewNotifyDispatchWorker(rdb *redis.Client, delivery notifier.Transport, log zerolog.Logger) *NotifyDispatchWorker {
	return &NotifyDispatchWorker{
		rdb:      rdb,
		delivery: delivery,
		log:      log.With().Str("component", "notify_dispatch_worker").Logger(),
	}
}

type dispatchPayload struct {
	StudentID int    `json:"student_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Channel   string `json:"channel"`
}

// Start runs the consume loop until ctx is cancelled.
func (w *NotifyDispatchWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotifyDispatchWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested")
			return

		default:
			item, err := w.rdb.BLPop(ctx, NotifyPollTimeout, config.WorkerKey.NotifyDispatchQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p dispatchPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Malformed dispatch job, dropping")
				continue
			}

			if err := w.delivery.Send(ctx, p.StudentID, p.Title, p.Message, p.Channel); err != nil {
				w.log.Warn().Err(err).Int("student_id", p.StudentID).Msg("Delivery failed, dropping")
			}
		}
	}
}
