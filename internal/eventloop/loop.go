// Package eventloop confines interview work to one consumer goroutine.
//
// Every producer (user commands, the countdown, deferred latency callbacks)
// posts closures to the same queue, so machine state is only ever touched by
// the goroutine running Loop.Run.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStopped is returned when work is posted to a loop that is no longer running.
var ErrStopped = errors.New("event loop stopped")

// Timer is a cancellable deferred callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped a callback that had not yet run.
	Stop() bool
}

// Scheduler defers callbacks onto the owning consumer.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
	Now() time.Time
}

// Loop is a single-consumer work queue backed by real wall-clock timers.
type Loop struct {
	queue chan func()
	done  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New creates a loop with the given queue buffer.
func New(buffer int) *Loop {
	if buffer <= 0 {
		buffer = 64
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Run consumes queued work until ctx is cancelled. It may only be called once.
func (l *Loop) Run(ctx context.Context) error {
	started := false
	l.startOnce.Do(func() { started = true })
	if !started {
		return errors.New("event loop already running")
	}
	defer l.stopOnce.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post enqueues fn. It blocks while the queue is full and fails once the loop stops.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	select {
	case l.queue <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// After schedules fn to run on the loop once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.timer = time.AfterFunc(d, func() {
		_ = l.Post(func() {
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			fn()
		})
	})
	return lt
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

// Stop marks the timer cancelled. A callback already queued on the loop is
// dropped when it is dequeued.
func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	if t.fired.Load() {
		return false
	}
	return !t.stopped.Swap(true)
}
