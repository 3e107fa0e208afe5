// Package scheduler runs the expiry reminder scan on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/training-service/internal/services"
	"github.com/robfig/cron/v3"
)

// Scanner is the job the scheduler drives.
type Scanner interface {
	Scan(ctx context.Context) (*services.ScanResult, error)
}

type Config struct {
	// Spec is a standard five field cron expression evaluated in Location.
	Spec     string
	Location *time.Location
	// Timeout bounds a single scan. Zero means no limit.
	Timeout time.Duration
}

type Scheduler struct {
	cron    *cron.Cron
	scanner Scanner
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	lastRun *RunResult
	ctx     context.Context
	cancel  context.CancelFunc
}

type RunResult struct {
	StartedAt time.Time
	Duration  time.Duration
	Result    *services.ScanResult
	Err       error
}

// New registers the scan under config.Spec. The scheduler is idle until Start.
func New(scanner Scanner, logger *slog.Logger, config Config) (*Scheduler, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		scanner: scanner,
		logger:  logger,
		timeout: config.Timeout,
		ctx:     ctx,
		cancel:  cancel,
	}

	cronLogger := slogAdapter{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(config.Location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err := s.cron.AddFunc(config.Spec, func() { s.RunNow(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", config.Spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Reminder scheduler started", "next_run", s.NextRun())
}

// Stop cancels a running scan and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunNow performs one scan synchronously.
func (s *Scheduler) RunNow(ctx context.Context) *RunResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	s.logger.Info("Running reminder scan")
	result, err := s.scanner.Scan(ctx)

	run := &RunResult{
		StartedAt: started,
		Duration:  time.Since(started),
		Result:    result,
		Err:       err,
	}
	if err != nil {
		s.logger.Error("Reminder scan failed", "error", err, "duration", run.Duration)
	} else {
		s.logger.Info("Reminder scan completed",
			"enrollment_events", result.EnrollmentEvents,
			"document_events", result.DocumentEvents,
			"failures", result.Failures,
			"duration", run.Duration)
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()
	return run
}

func (s *Scheduler) LastRun() *RunResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

// slogAdapter satisfies cron.Logger.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Debug("cron: "+msg, keysAndValues...)
}

func (a slogAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
