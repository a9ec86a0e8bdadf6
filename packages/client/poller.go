package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrPollerRunning = errors.New("poller already running")

// Poller runs a task once on Start and then every interval until Stop or
// until the Start context is cancelled. Trigger forces an extra run. A poller
// whose context ended must still be stopped before it can start again.
type Poller struct {
	interval time.Duration
	task     func(ctx context.Context) error
	onError  func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
}

func NewPoller(interval time.Duration, task func(ctx context.Context) error) *Poller {
	return &Poller{
		interval: interval,
		task:     task,
		onError: func(err error) {
			log.Printf("poll failed: %v", err)
		},
	}
}

// OnError replaces the default handler, which logs the failure.
func (p *Poller) OnError(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != nil {
		return ErrPollerRunning
	}
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.trigger = make(chan struct{}, 1)

	go p.loop(ctx, p.done, p.trigger, p.onError)
	return nil
}

func (p *Poller) loop(ctx context.Context, done chan struct{}, trigger <-chan struct{}, onError func(error)) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	run := func() {
		if err := p.task(ctx); err != nil && ctx.Err() == nil && onError != nil {
			onError(err)
		}
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		case <-trigger:
			run()
			ticker.Reset(p.interval)
		}
	}
}

// Stop cancels the loop and waits for an in-flight run to return. Calling it
// on a stopped poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done, p.trigger = nil, nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Trigger asks for an immediate run. Requests made while one is pending are
// coalesced.
func (p *Poller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trigger == nil {
		return
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}
