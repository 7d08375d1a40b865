package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAddJob(t *testing.T) {
	var mu sync.Mutex
	var calls int

	sched := New(nil)
	err := sched.AddJob("daily-report", "@every 1s", func(ctx context.Context) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if sched.JobCount() != 1 {
		t.Errorf("JobCount = %d", sched.JobCount())
	}

	// Start cron and wait for it to fire
	sched.cron.Start()
	time.Sleep(1500 * time.Millisecond)
	sched.cron.Stop()

	mu.Lock()
	defer mu.Unlock()
	if calls == 0 {
		t.Error("expected at least one firing")
	}
}

func TestInvalidSchedule(t *testing.T) {
	sched := New(nil)
	err := sched.AddJob("daily-report", "invalid-cron", func(context.Context) {})
	if err == nil {
		t.Error("expected error for invalid schedule")
	}
	if sched.JobCount() != 0 {
		t.Errorf("JobCount = %d after failed add", sched.JobCount())
	}
}

func TestAddJobReplacesSameName(t *testing.T) {
	sched := New(nil)
	sched.AddJob("daily-report", "@every 1h", func(context.Context) {})
	sched.AddJob("daily-report", "@every 2h", func(context.Context) {})

	if sched.JobCount() != 1 {
		t.Errorf("JobCount = %d, want the second registration to replace the first", sched.JobCount())
	}
}

func TestRemoveJob(t *testing.T) {
	sched := New(nil)
	sched.AddJob("daily-report", "@every 1h", func(context.Context) {})

	sched.RemoveJob("daily-report")
	if sched.JobCount() != 0 {
		t.Errorf("JobCount = %d after remove", sched.JobCount())
	}

	// Unknown names are a no-op.
	sched.RemoveJob("never-registered")
}

func TestStartStopsOnCancel(t *testing.T) {
	sched := New(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestJobReceivesRunContext(t *testing.T) {
	sched := New(nil)

	got := make(chan context.Context, 1)
	sched.AddJob("probe", "@every 1s", func(ctx context.Context) {
		select {
		case got <- ctx:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Start(ctx)

	select {
	case jobCtx := <-got:
		if jobCtx != ctx {
			t.Error("job did not receive the scheduler's run context")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("job never fired")
	}
}
