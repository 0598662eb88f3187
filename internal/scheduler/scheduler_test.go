package scheduler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Konovalexx/hh-parser-2/internal/logging"
	"github.com/Konovalexx/hh-parser-2/internal/scheduler"
)

func TestRunNow_RunsSynchronously(t *testing.T) {
	var runs int32
	job := func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}

	s := scheduler.New("@every 1h", job, logging.NewNop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	s.RunNow()
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs after RunNow = %d, want 1", got)
	}
}

func TestRunNow_BeforeStartIsNoop(t *testing.T) {
	var runs int32
	s := scheduler.New("@every 1h", func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, logging.NewNop())

	s.RunNow()
	if runs != 0 {
		t.Errorf("runs = %d, want 0 before Start", runs)
	}
}

func TestStart_InvalidSpec(t *testing.T) {
	s := scheduler.New("every now and then", func(context.Context) error { return nil }, logging.NewNop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRuns_DoNotOverlap(t *testing.T) {
	var running, maxRunning, runs int32
	release := make(chan struct{})
	started := make(chan struct{}, 16)

	job := func(ctx context.Context) error {
		n := atomic.AddInt32(&running, 1)
		for {
			m := atomic.LoadInt32(&maxRunning)
			if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
				break
			}
		}
		atomic.AddInt32(&runs, 1)
		started <- struct{}{}
		<-release
		atomic.AddInt32(&running, -1)
		return nil
	}

	s := scheduler.New("@every 1s", job, logging.NewNop())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.RunNow()
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("RunNow did not start the job")
	}

	// at least two ticks fire while the first run is blocked
	time.Sleep(2500 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs while blocked = %d, want 1", got)
	}

	close(release)
	wg.Wait()
	s.Stop(context.Background())

	if got := atomic.LoadInt32(&maxRunning); got != 1 {
		t.Errorf("max concurrent runs = %d, want 1", got)
	}
}
