package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
}

func TestPollerRunsOnStartAndTrigger(t *testing.T) {
	runs := make(chan struct{}, 10)
	p := NewPoller(time.Hour, func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	})

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, runs)

	p.Trigger()
	waitFor(t, runs)

	if err := p.Start(context.Background()); !errors.Is(err, ErrPollerRunning) {
		t.Errorf("second Start = %v", err)
	}

	p.Stop()
	p.Stop()
	if p.Running() {
		t.Error("poller still running after Stop")
	}
	p.Trigger()
}

func TestPollerTicks(t *testing.T) {
	var count atomic.Int32
	p := NewPoller(2*time.Millisecond, func(ctx context.Context) error {
		count.Add(1)
		return nil
	})
	p.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for count.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	p.Stop()
	if count.Load() < 3 {
		t.Errorf("ran %d times", count.Load())
	}

	after := count.Load()
	time.Sleep(10 * time.Millisecond)
	if count.Load() != after {
		t.Error("task ran after Stop returned")
	}
}

func TestPollerReportsErrors(t *testing.T) {
	failures := make(chan struct{}, 1)
	p := NewPoller(time.Hour, func(ctx context.Context) error {
		return errors.New("backend down")
	})
	p.OnError(func(err error) {
		if err.Error() == "backend down" {
			failures <- struct{}{}
		}
	})
	p.Start(context.Background())
	defer p.Stop()
	waitFor(t, failures)
}

func TestPollerRestartsAfterStop(t *testing.T) {
	runs := make(chan struct{}, 10)
	p := NewPoller(time.Hour, func(ctx context.Context) error {
		runs <- struct{}{}
		return nil
	})
	p.Start(context.Background())
	waitFor(t, runs)
	p.Stop()

	if err := p.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitFor(t, runs)
	p.Stop()
}
