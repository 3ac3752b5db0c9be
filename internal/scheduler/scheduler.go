// Package scheduler runs the roster batch on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dupr-sync-service/internal/logging"
)

const defaultInterval = 6 * time.Hour

// Runner executes one synchronization run.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler triggers batch runs until stopped.
type Scheduler struct {
	runner     Runner
	logger     *slog.Logger
	interval   time.Duration
	runOnStart bool

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the scheduler loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the scheduler has had a recent success and is not
// failing repeatedly. Before the first run it reports true; a schedule that
// has not fired yet is not a failure.
func (s Status) IsReady() bool {
	if s.LastAttempt.IsZero() {
		return true
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Scheduler with sane defaults.
func New(runner Runner, logger *slog.Logger, interval time.Duration, runOnStart bool) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		runner:     runner,
		logger:     logger,
		interval:   interval,
		runOnStart: runOnStart,
		done:       make(chan struct{}),
	}
}

// Start begins scheduling until the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.startMu.Unlock()

	s.ticker = time.NewTicker(s.interval)

	go func() {
		s.logInfo("scheduler started", logging.FieldDurationMS, s.interval.Milliseconds())
		if s.runOnStart {
			s.runOnce(ctx)
		}

		for {
			select {
			case <-ctx.Done():
				s.stopTicker()
				s.logInfo("scheduler stopped")
				return
			case <-s.done:
				s.stopTicker()
				s.logInfo("scheduler stopped")
				return
			case <-s.ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop halts the scheduling loop.
func (s *Scheduler) Stop(ctx context.Context) error {
	_ = ctx
	s.stopOnce.Do(func() {
		close(s.done)
		s.stopTicker()
	})
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	s.recordAttempt(start)

	err := s.runner.Run(ctx)
	if err != nil {
		logging.Error(s.logger, "scheduled run failed", err,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
		s.recordFailure(err, start)
		return
	}

	s.recordSuccess(start)
	s.logInfo("scheduled run finished", logging.FieldDurationMS, time.Since(start).Milliseconds())
}

func (s *Scheduler) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
}

func (s *Scheduler) logInfo(msg string, args ...any) {
	logging.Info(s.logger, msg, args...)
}

func (s *Scheduler) recordAttempt(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.LastAttempt = at
}

func (s *Scheduler) recordSuccess(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastSuccess = at
}

func (s *Scheduler) recordFailure(err error, at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures++
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.status.LastAttempt = at
}

// Status returns a snapshot of the scheduler's recent health.
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}
