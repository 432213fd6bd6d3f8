// Package scheduler triggers the refresh cycle on a fixed interval and
// chains the recommendation job strictly after a successful refresh.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/tigerroll/vacationspots/internal/config"
	corejob "github.com/tigerroll/vacationspots/internal/core/job"
	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleName = "scheduler"

// Scheduler runs the refresh-then-recommend cycle periodically. Cycles
// never overlap: a tick arriving while a cycle is running is skipped.
type Scheduler struct {
	cfg           *config.SchedulerConfig
	launcher      *corejob.Launcher
	jobRepository port.JobRepository
	refresh       port.Job
	recommend     port.Job

	mu      sync.Mutex
	running bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewScheduler creates a Scheduler over the two application jobs.
func NewScheduler(cfg *config.SchedulerConfig, launcher *corejob.Launcher, jobRepository port.JobRepository, refresh, recommend port.Job) *Scheduler {
	return &Scheduler{
		cfg:           cfg,
		launcher:      launcher,
		jobRepository: jobRepository,
		refresh:       refresh,
		recommend:     recommend,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start launches the periodic loop in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	interval := time.Duration(s.cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	go func() {
		defer close(s.doneCh)

		if s.cfg.RunOnStart {
			if err := s.RunCycle(ctx); err != nil {
				logger.Errorf("Initial refresh cycle failed: %v", err)
			}
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		logger.Infof("Scheduler started (interval: %s)", interval)

		for {
			select {
			case <-ctx.Done():
				logger.Infof("Scheduler stopping: %v", ctx.Err())
				return
			case <-s.stopCh:
				logger.Infof("Scheduler stopped.")
				return
			case <-ticker.C:
				if err := s.RunCycle(ctx); err != nil {
					logger.Errorf("Scheduled refresh cycle failed: %v", err)
				}
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}

// RunCycle runs one refresh followed, on success, by one recommendation.
// The recommendation job never starts when the refresh did not complete.
// If a cycle is already in flight the call is a no-op.
func (s *Scheduler) RunCycle(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warnf("Refresh cycle already in progress; skipping this trigger.")
		return nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	refreshExecution, err := s.launcher.Launch(ctx, s.refresh, model.NewJobParameters())
	if err != nil {
		return exception.NewBatchError(moduleName, "refresh job failed; recommendation skipped", err, false, false)
	}
	if refreshExecution.Status != model.BatchStatusCompleted {
		logger.Warnf("Refresh job finished with status %s; recommendation skipped.", refreshExecution.Status)
		return nil
	}

	// The chaining decision reads the durable record, not just the
	// in-memory execution: a refresh whose final state never reached the
	// metadata tables must not trigger a recommendation.
	persisted, err := s.jobRepository.FindJobExecutionByID(ctx, refreshExecution.ID)
	if err != nil {
		return exception.NewBatchError(moduleName, "failed to load persisted refresh outcome; recommendation skipped", err, false, false)
	}
	if persisted.Status != model.BatchStatusCompleted {
		logger.Warnf("Persisted refresh record shows status %s; recommendation skipped.", persisted.Status)
		return nil
	}

	if _, err := s.launcher.Launch(ctx, s.recommend, model.NewJobParameters()); err != nil {
		return exception.NewBatchError(moduleName, "recommendation job failed", err, false, false)
	}
	return nil
}
