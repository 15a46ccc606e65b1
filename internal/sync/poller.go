// Package sync provides the client-side synchronization primitives: the
// background polling refresher and the per-item async operation tracker.
package sync

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"shotcraft/pkg/logger"
)

// Poller re-invokes a refetch callback on a fixed interval and immediately on
// Resume (the foreground-regain analogue of a browser tab becoming visible).
//
// Overlap policy: a tick or Resume is a no-op while the previous refetch has
// not resolved. Skipping (rather than cancel-and-restart) keeps a slow server
// from ever seeing more than one refresh in flight per poller.
//
// After Stop returns the callback is guaranteed not to run again.
type Poller struct {
	interval time.Duration
	refetch  func(context.Context)

	resume chan struct{}

	mu       sync.Mutex
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	inFlight atomic.Bool
	stopped  bool
}

// NewPoller creates a poller. The callback receives a context that is
// cancelled when the poller stops.
func NewPoller(interval time.Duration, refetch func(context.Context)) *Poller {
	return &Poller{
		interval: interval,
		refetch:  refetch,
		resume:   make(chan struct{}, 1),
	}
}

// Start launches the polling loop. The first refetch happens on the first
// tick; callers that need an immediate fetch call Resume right after Start or
// fetch once themselves. Start is a no-op on a stopped or running poller.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go p.loop(runCtx)
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fire(ctx)
		case <-p.resume:
			p.fire(ctx)
		}
	}
}

// fire runs one refetch unless one is already in flight.
func (p *Poller) fire(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		logger.Tracef("poller: refetch still in flight, skipping tick")
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Store(false)
		p.refetch(ctx)
	}()
}

// Resume triggers an immediate refetch, used when the app regains the
// foreground after being suspended. Never blocks; collapses into the pending
// trigger if one is already queued.
func (p *Poller) Resume() {
	select {
	case p.resume <- struct{}{}:
	default:
	}
}

// Stop cancels the timer and waits for any in-flight refetch to return.
// Idempotent. A stopped poller cannot be restarted.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}
