package api

import (
	"testing"
	"time"

	"github.com/timeclerk/worktime-engine/worktime"
	"github.com/timeclerk/worktime-engine/worktime/store"
)

func TestRolloverScheduler_StartStop(t *testing.T) {
	// GIVEN: A running scheduler
	// WHEN: Stopping it
	// THEN: Stop returns after the in-flight run, without panicking

	svc := worktime.NewService(store.NewMemory())
	sched := NewRolloverScheduler(svc, nil, time.Hour)

	sched.Start()
	sched.RunNow()
	sched.Stop()
}

func TestRolloverScheduler_DefaultInterval(t *testing.T) {
	svc := worktime.NewService(store.NewMemory())
	sched := NewRolloverScheduler(svc, nil, 0)
	if sched.CheckInterval != time.Hour {
		t.Errorf("default interval = %v, want 1h", sched.CheckInterval)
	}
}
