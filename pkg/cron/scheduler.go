// Package cron provides scheduled batch runs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNoSchedule is returned by Start when no cron expression was configured.
var ErrNoSchedule = errors.New("no schedule configured")

// Job is one bounded batch run.
type Job func(ctx context.Context) error

// Scheduler re-runs a batch job on a cron schedule using robfig/cron.
type Scheduler struct {
	cron    *cron.Cron
	expr    string
	job     Job
	timeout time.Duration
	running atomic.Bool
	logger  *slog.Logger
}

// NewScheduler creates a new job scheduler. Each run gets its own context bounded by timeout.
func NewScheduler(expr string, job Job, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:    c,
		expr:    expr,
		job:     job,
		timeout: timeout,
		logger:  logger,
	}
}

// Start registers the batch job and begins scheduling.
func (s *Scheduler) Start() error {
	if s.expr == "" {
		return ErrNoSchedule
	}
	if _, err := s.cron.AddFunc(s.expr, s.run); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.expr),
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops scheduling; the returned context is done once a running batch finishes.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a batch immediately and waits for it.
func (s *Scheduler) RunNow() {
	s.run()
}

// run executes one batch. Overlapping ticks are skipped rather than queued.
func (s *Scheduler) run() {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous batch still running, skipping tick")
		return
	}
	defer s.running.Store(false)

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("starting scheduled batch")
	if err := s.job(ctx); err != nil {
		s.logger.Warn("scheduled batch failed",
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(start)),
		)
		return
	}
	s.logger.Info("scheduled batch completed", slog.Duration("elapsed", time.Since(start)))
}
