package scheduler

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"ideabox/internal/config"
	"ideabox/internal/metrics"
	mailsync "ideabox/internal/sync"
)

// Scheduler runs the sync pipeline periodically across all active accounts.
type Scheduler struct {
	cron         *cron.Cron
	entryID      cron.EntryID
	config       *config.SchedulerConfig
	orchestrator *mailsync.Orchestrator
	opts         mailsync.Options
	metrics      *metrics.Metrics
	ctx          context.Context
	cancel       context.CancelFunc
	wg           stdsync.WaitGroup
	isRunning    bool
	mu           stdsync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, orchestrator *mailsync.Orchestrator, opts mailsync.Options, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:         cron.New(cron.WithSeconds()),
		config:       cfg,
		orchestrator: orchestrator,
		opts:         opts,
		metrics:      m,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.config.IntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()
	ctx := s.cron.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// runSync is the periodic job: one full pass over all active accounts.
func (s *Scheduler) runSync() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Scheduler not running, skipping sync cycle")
		return
	}
	s.mu.RUnlock()

	logrus.Info("Starting scheduled sync cycle")
	startTime := time.Now()

	totals, err := s.orchestrator.SyncAll(s.ctx, s.opts)
	if err != nil {
		logrus.Errorf("Scheduled sync failed: %v", err)
		s.metrics.SyncFailures.Inc()
		return
	}

	s.recordTotals(totals, time.Since(startTime))

	logrus.Infof("Sync cycle completed in %v: %d accounts, %d created, %d skipped, %d failed",
		time.Since(startTime), totals.Accounts, totals.MessagesCreated,
		totals.MessagesSkipped, totals.MessagesFailed)
}

func (s *Scheduler) recordTotals(totals *mailsync.Totals, elapsed time.Duration) {
	s.metrics.SyncRuns.Inc()
	s.metrics.SyncFailures.Add(float64(totals.AccountsFailed))
	s.metrics.MessagesFetched.Add(float64(totals.MessagesFetched))
	s.metrics.MessagesCreated.Add(float64(totals.MessagesCreated))
	s.metrics.MessagesSkipped.Add(float64(totals.MessagesSkipped))
	s.metrics.MessagesFailed.Add(float64(totals.MessagesFailed))
	s.metrics.SyncDuration.Observe(elapsed.Seconds())
}

// RunOnce runs the sync once (for manual triggering)
func (s *Scheduler) RunOnce() error {
	logrus.Info("Running sync once")
	s.runSync()
	return nil
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last run
func (s *Scheduler) GetLastRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Prev
}

// Wait waits for in-flight sync cycles to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
