// Package engine serializes all mutations of a session through a
// single logical worker, so no two state transitions for the same
// game ever race. Sessions are independent units of mutable state;
// each gets its own worker, started lazily on first use.
package engine

import (
	"context"
	"log"
	"sync"

	apperr "github.com/KirkDiggler/tabletop-engine/internal/errors"
	"golang.org/x/sync/errgroup"
)

// Op is a single load-transform-store transition against one session
type Op func(ctx context.Context) error

type submission struct {
	ctx    context.Context
	op     Op
	result chan error
}

type worker struct {
	ops  chan submission
	done chan struct{}
}

// Dispatcher owns one worker goroutine per session
type Dispatcher struct {
	mu      sync.Mutex
	workers map[string]*worker
	closed  bool
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		workers: make(map[string]*worker),
	}
}

// Submit runs op on the session's worker and waits for its result.
// Ops for the same session run strictly one at a time, in submission
// order; ops for different sessions run independently.
func (d *Dispatcher) Submit(ctx context.Context, sessionID string, op Op) error {
	if sessionID == "" {
		return apperr.InvalidArgument("session ID is required")
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return apperr.NotReady("dispatcher is shut down")
	}

	w, exists := d.workers[sessionID]
	if !exists {
		w = &worker{
			ops:  make(chan submission),
			done: make(chan struct{}),
		}
		d.workers[sessionID] = w
		go w.run()
	}
	d.mu.Unlock()

	sub := submission{
		ctx:    ctx,
		op:     op,
		result: make(chan error, 1),
	}

	select {
	case w.ops <- sub:
	case <-ctx.Done():
		return apperr.Wrap(ctx.Err(), "request cancelled before dispatch")
	}

	select {
	case err := <-sub.result:
		return err
	case <-ctx.Done():
		// The op still runs to completion on the worker; the state
		// transition is atomic either way, only the caller gave up.
		return apperr.Wrap(ctx.Err(), "request cancelled while dispatched")
	}
}

func (w *worker) run() {
	defer close(w.done)
	for sub := range w.ops {
		sub.result <- sub.op(sub.ctx)
	}
}

// Shutdown stops accepting work and waits for every worker to drain
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	workers := make([]*worker, 0, len(d.workers))
	for _, w := range d.workers {
		workers = append(workers, w)
	}
	d.mu.Unlock()

	log.Printf("engine: shutting down %d session workers", len(workers))

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		close(w.ops)
		g.Go(func() error {
			select {
			case <-w.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}
	return g.Wait()
}
