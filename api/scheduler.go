/*
scheduler.go - Periodic month rollover

PURPOSE:
  Runs the out-of-band job that extends every active contract's report
  ledger at the start of each calendar month. The engine itself never
  schedules anything; this is the collaborator that invokes its
  OnMonthRollover hook.

DESIGN:
  - Background goroutine with a configurable check interval
  - Rollover itself is idempotent (existing reports are skipped), so
    checking more often than monthly is harmless
  - Contracts whose recompute lock is contended are retried on the next
    tick

USAGE:
  sched := NewRolloverScheduler(svc, log, time.Hour)
  sched.Start()
  // ... later
  sched.Stop()
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/timeclerk/worktime-engine/worktime"
)

// RolloverScheduler periodically extends the report ledger.
type RolloverScheduler struct {
	Service       *worktime.Service
	Log           *zap.Logger
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRolloverScheduler creates a scheduler with the given check interval.
func NewRolloverScheduler(svc *worktime.Service, log *zap.Logger, interval time.Duration) *RolloverScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &RolloverScheduler{
		Service:       svc,
		Log:           log,
		CheckInterval: interval,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *RolloverScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)
	go rs.run()

	rs.Log.Info("rollover scheduler started", zap.Duration("interval", rs.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (rs *RolloverScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.Log.Info("rollover scheduler stopped")
	}
}

func (rs *RolloverScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start so a restart never misses a month boundary.
	rs.rollover()

	for {
		select {
		case <-rs.ticker.C:
			rs.rollover()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RolloverScheduler) rollover() {
	now := time.Now()
	if err := rs.Service.RolloverMonth(context.Background(), now); err != nil {
		if worktime.IsRetryable(err) {
			rs.Log.Warn("rollover contended, will retry next tick", zap.Error(err))
			return
		}
		rs.Log.Error("rollover failed", zap.Error(err))
		return
	}
	rs.Log.Info("rollover completed", zap.Time("today", now))
}

// RunNow triggers an immediate rollover check (for testing/admin).
func (rs *RolloverScheduler) RunNow() {
	rs.rollover()
}
