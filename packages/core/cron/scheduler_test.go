package cron

import (
	"context"
	"errors"
	"testing"
)

type fakeWarmer struct {
	calls int
	err   error
}

func (f *fakeWarmer) WarmCache(ctx context.Context) error {
	f.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("job context has no deadline")
	}
	return f.err
}

type fakePurger struct {
	calls int
}

func (f *fakePurger) PurgeExpiredTokens(context.Context) (int64, error) {
	f.calls++
	return 3, nil
}

func TestRunNowTriggersEveryJob(t *testing.T) {
	warmer := &fakeWarmer{}
	purger := &fakePurger{}
	s := NewScheduler(warmer, purger)

	s.RunNow()

	if warmer.calls != 1 || purger.calls != 1 {
		t.Errorf("warm calls = %d, purge calls = %d", warmer.calls, purger.calls)
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(&fakeWarmer{}, nil)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if got := len(s.cron.Entries()); got != 1 {
		t.Errorf("entries = %d, want 1 without a purger", got)
	}
	s.Stop()
}

func TestJobErrorsAreLogged(t *testing.T) {
	warmer := &fakeWarmer{err: errors.New("redis down")}
	s := NewScheduler(warmer, nil)
	s.RunNow()
	if warmer.calls != 1 {
		t.Errorf("calls = %d", warmer.calls)
	}
}
