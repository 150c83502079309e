// Package poller runs a task on a fixed cadence until stopped.
package poller

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is used when Start is given a non-positive interval.
const DefaultInterval = 10 * time.Second

// Handle controls one running poller.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start launches a goroutine that calls fn every interval, first after one
// full interval has elapsed. fn receives ctx, not the poller's own context, so
// Stop ends the loop without cancelling a call already in flight. Ticks that
// arrive while fn is running are dropped. Start returns immediately.
func Start(ctx context.Context, interval time.Duration, fn func(context.Context)) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
			}
			// Stop may race with the tick; prefer stopping.
			if loopCtx.Err() != nil {
				return
			}
			fn(ctx)
		}
	}()
	return h
}

// Stop ends the loop. It is safe to call more than once and from any
// goroutine, and does not wait for a running call to return.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
}

// Done is closed once the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
