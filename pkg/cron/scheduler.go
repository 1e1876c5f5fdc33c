// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes stale files from temporary upload storage.
type Sweeper interface {
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

// SweepRecorder receives the number of files removed per run. Optional.
type SweepRecorder interface {
	IncrUploadsSwept(n int)
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  Sweeper
	recorder SweepRecorder
	schedule string
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. schedule accepts the standard
// 5-field format and descriptors such as "@every 10m".
func NewScheduler(sweeper Sweeper, schedule string, maxAge time.Duration, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		sweeper:  sweeper,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// WithRecorder reports swept file counts, e.g. to Prometheus
func (s *Scheduler) WithRecorder(r SweepRecorder) *Scheduler {
	s.recorder = r
	return s
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepUploads); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("sweep_schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers the sweep synchronously.
func (s *Scheduler) RunNow() {
	s.sweepUploads()
}

func (s *Scheduler) sweepUploads() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := s.sweeper.Sweep(ctx, s.maxAge)
	if err != nil {
		s.logger.Error("failed to sweep temporary uploads",
			slog.Int("removed", removed),
			slog.Any("error", err),
		)
	}
	if s.recorder != nil {
		s.recorder.IncrUploadsSwept(removed)
	}
	if removed > 0 {
		s.logger.Info("swept stale uploads", slog.Int("removed", removed))
	}
}
