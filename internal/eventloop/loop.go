// Package eventloop serializes callbacks onto a single goroutine. Pointer
// callbacks and route query completions are posted here so the route model is
// only ever mutated from one place.
package eventloop

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/dpup/prefab/errors"
	"github.com/dpup/prefab/logging"
)

// ErrStopped is returned by Do when the loop exits before running the callback
var ErrStopped = errors.New("event loop stopped")

// Dispatcher accepts callbacks for serialized execution
type Dispatcher interface {
	Post(fn func())
}

// Loop runs posted callbacks in FIFO order on the goroutine that calls Run
type Loop struct {
	mu      sync.Mutex
	pending []func()

	wake     chan struct{}
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New creates an idle loop; call Run to start processing
func New() *Loop {
	return &Loop{
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Post queues fn. It never blocks, so callbacks may post further callbacks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do posts fn and waits until it has run
func (l *Loop) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	l.Post(func() {
		defer close(ran)
		fn()
	})

	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The callback may have been the last thing the loop ran
		select {
		case <-ran:
			return nil
		default:
			return ErrStopped
		}
	}
}

// Run processes callbacks until ctx is cancelled or Stop is called
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	ctx = logging.EnsureLogger(ctx)

	logging.Debugw(ctx, "Event loop started")

	for {
		for _, fn := range l.drain() {
			l.invoke(ctx, fn)
		}

		select {
		case <-ctx.Done():
			logging.Debugw(ctx, "Event loop stopping due to context cancellation")
			return ctx.Err()
		case <-l.stopChan:
			logging.Debugw(ctx, "Event loop stopping due to stop signal")
			return nil
		case <-l.wake:
		}
	}
}

// Stop asks Run to return after the current batch
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	batch := l.pending
	l.pending = nil
	return batch
}

// invoke runs fn, keeping the loop alive if it panics
func (l *Loop) invoke(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			err, _ := errors.ParseStack(debug.Stack())
			skipFrames := 3
			numFrames := 5
			logging.Errorw(ctx, "Event loop: recovered from panic",
				"error", r, "error.stack_trace", err.MinimalStack(skipFrames, numFrames))
		}
	}()

	fn()
}

// Inline runs callbacks immediately on the caller's goroutine. It is meant
// for tests and single-shot tools that have no loop of their own.
type Inline struct{}

// Post runs fn synchronously
func (Inline) Post(fn func()) {
	fn()
}
