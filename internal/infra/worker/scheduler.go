package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc executes one import pass. The trigger label distinguishes
// scheduled runs from manual ones on logs and metrics.
type RunFunc func(ctx context.Context, trigger string) error

// Scheduler fires the import job on the configured cron schedule. A failed
// run is logged and the job stays scheduled for the next tick.
type Scheduler struct {
	cfg    Config
	run    RunFunc
	logger *slog.Logger
	cron   *cron.Cron
}

func NewScheduler(cfg Config, run RunFunc, logger *slog.Logger) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	return &Scheduler{
		cfg:    cfg,
		run:    run,
		logger: logger,
		cron:   cron.New(cron.WithLocation(location)),
	}, nil
}

// Start registers the job and begins the cron loop. It returns after the
// loop is running; use Stop for shutdown.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSchedule, s.tick)
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", s.cfg.CronSchedule, err)
	}
	s.cron.Start()
	s.logger.Info("import scheduler started",
		slog.String("schedule", s.cfg.CronSchedule),
		slog.String("timezone", s.cfg.Timezone))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("import scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ImportTimeout)
	defer cancel()

	if err := s.run(ctx, "scheduled"); err != nil {
		s.logger.Error("scheduled import failed", slog.Any("error", err))
		return
	}
}
