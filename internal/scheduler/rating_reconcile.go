package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/bookstore/internal/config"
)

// defaultRunTimeout bounds a single reconcile run.
const defaultRunTimeout = 10 * time.Minute

// ErrAlreadyRunning is returned when a reconcile is requested while one is in progress.
var ErrAlreadyRunning = errors.New("rating reconcile already running")

// Reconciler recomputes the stored rating of every book.
type Reconciler interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// RatingReconcileScheduler periodically recomputes all book ratings so that
// ratings lost to concurrent rate updates converge again.
type RatingReconcileScheduler struct {
	reconciler Reconciler
	schedule   string
	logger     *slog.Logger
	timeout    time.Duration

	cron        *cron.Cron
	entryID     cron.EntryID
	mu          sync.RWMutex
	isRunning   bool
	reconciling bool
	runCtx      context.Context
	cancelFunc  context.CancelFunc
	lastRun     time.Time
	lastCount   int
	lastErr     error
}

// NewRatingReconcileScheduler creates a scheduler for the given cron schedule.
func NewRatingReconcileScheduler(reconciler Reconciler, schedule string, logger *slog.Logger) *RatingReconcileScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RatingReconcileScheduler{
		reconciler: reconciler,
		schedule:   schedule,
		logger:     logger.With("component", "rating_reconcile"),
		timeout:    defaultRunTimeout,
		cron:       cron.New(cron.WithParser(config.ScheduleParser())),
	}
}

// Start registers the reconcile job and starts the cron loop. It returns
// immediately; the scheduler stops when ctx is cancelled or Stop is called.
func (s *RatingReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}
	s.entryID = entryID

	s.runCtx, s.cancelFunc = context.WithCancel(ctx)
	cancelCtx := s.runCtx

	s.cron.Start()
	s.isRunning = true

	s.logger.Info("rating reconcile scheduler started", "schedule", s.schedule, "next_run", s.nextRunLocked())

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *RatingReconcileScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.cron.Remove(s.entryID)
	s.mu.Unlock()

	// Cancelling first interrupts a running job; the job takes the lock
	// itself, so wait outside of it.
	if cancel != nil {
		cancel()
	}
	<-s.cron.Stop().Done()

	s.logger.Info("rating reconcile scheduler stopped")
}

// RunNow performs one reconcile synchronously, outside of the schedule.
func (s *RatingReconcileScheduler) RunNow(ctx context.Context) (int, error) {
	return s.reconcile(ctx)
}

// NextRun returns when the job fires next, or nil when stopped.
func (s *RatingReconcileScheduler) NextRun() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextRunLocked()
}

// LastRun returns the time, book count and error of the last finished run.
func (s *RatingReconcileScheduler) LastRun() (time.Time, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastCount, s.lastErr
}

func (s *RatingReconcileScheduler) nextRunLocked() *time.Time {
	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *RatingReconcileScheduler) run() {
	s.mu.RLock()
	parent := s.runCtx
	s.mu.RUnlock()
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()
	_, _ = s.reconcile(ctx)
}

func (s *RatingReconcileScheduler) reconcile(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.reconciling {
		s.mu.Unlock()
		s.logger.Info("rating reconcile skipped, already running")
		return 0, ErrAlreadyRunning
	}
	s.reconciling = true
	s.mu.Unlock()

	start := time.Now()
	n, err := s.reconciler.RecomputeAll(ctx)

	s.mu.Lock()
	s.reconciling = false
	s.lastRun = start
	s.lastCount = n
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("rating reconcile failed", "books", n, "error", err)
		return n, err
	}
	s.logger.Info("rating reconcile finished", "books", n, "duration", time.Since(start).Round(time.Millisecond))
	return n, nil
}
