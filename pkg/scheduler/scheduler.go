// Package scheduler runs the platform's recurring jobs on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kr8tiv/platform-core/internal/metrics"
)

// ErrUnknownJob is returned when a job name has not been registered.
var ErrUnknownJob = errors.New("unknown scheduled job")

// jobTimeout bounds a single run so a stuck job cannot wedge the scheduler.
const jobTimeout = 10 * time.Minute

// Job is one schedulable unit of work.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner with named, manually triggerable jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu   sync.RWMutex
	jobs map[string]Job
}

// New creates a new scheduler
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]Job),
	}
}

// Register adds a named job on the given cron spec. Descriptor specs like
// "@hourly" and "@every 15m" are accepted.
func (s *Scheduler) Register(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", spec, name, err)
	}

	s.jobs[name] = job
	s.logger.Info("Registered scheduled job",
		zap.String("job", name),
		zap.String("schedule", spec))
	return nil
}

// RunJob fires a registered job immediately, outside its schedule.
func (s *Scheduler) RunJob(ctx context.Context, name string) error {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return job(ctx)
}

// JobNames lists the registered job names, sorted.
func (s *Scheduler) JobNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Strings("jobs", s.JobNames()))
}

// Stop halts scheduling and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// run executes one scheduled firing. Job errors and panics are logged, never
// propagated; a broken job must not take the scheduler down with it.
func (s *Scheduler) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.ScheduledJobRuns.WithLabelValues(name, "panic").Inc()
			s.logger.Error("Scheduled job panicked",
				zap.String("job", name),
				zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := job(ctx); err != nil {
		metrics.ScheduledJobRuns.WithLabelValues(name, "error").Inc()
		s.logger.Error("Scheduled job failed",
			zap.String("job", name),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}
	metrics.ScheduledJobRuns.WithLabelValues(name, "ok").Inc()
	s.logger.Debug("Scheduled job finished",
		zap.String("job", name),
		zap.Duration("duration", time.Since(start)))
}
