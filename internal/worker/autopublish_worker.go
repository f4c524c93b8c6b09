package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/tahfidzid/mutqin-backend/internal/service"
)

// autoPublishTimeout bounds one whole batch run.
const autoPublishTimeout = 5 * time.Minute

// AutoPublishWorker runs the daily auto-publish batch on a cron schedule.
// SkipIfStillRunning guards against a slow run overlapping the next tick.
type AutoPublishWorker struct {
	companionsService *service.CompanionsService
	schedule          string
	log               zerolog.Logger
	cron              *cron.Cron
}

// NewAutoPublishWorker creates a new AutoPublishWorker. schedule is a
// standard 5-field cron expression, e.g. "0 17 * * *".
func NewAutoPublishWorker(companionsService *service.CompanionsService, schedule string, log zerolog.Logger) *AutoPublishWorker {
	return &AutoPublishWorker{
		companionsService: companionsService,
		schedule:          schedule,
		log:               log.With().Str("component", "autopublish_worker").Logger(),
	}
}

// Start registers the cron entry and begins scheduling. It returns an error
// only for an invalid schedule expression.
func (w *AutoPublishWorker) Start() error {
	w.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := w.cron.AddFunc(w.schedule, w.runOnce)
	if err != nil {
		return err
	}

	w.cron.Start()
	w.log.Info().Str("schedule", w.schedule).Msg("AutoPublishWorker started")
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (w *AutoPublishWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.log.Info().Msg("AutoPublishWorker stopped")
}

func (w *AutoPublishWorker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), autoPublishTimeout)
	defer cancel()

	report, err := w.companionsService.AutoPublishDue(ctx, time.Now().UTC())
	if err != nil {
		w.log.Error().Err(err).Msg("Auto-publish run failed")
		return
	}

	w.log.Info().
		Str("date", report.TargetDate).
		Int("published", report.Published).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("Auto-publish run finished")
}
