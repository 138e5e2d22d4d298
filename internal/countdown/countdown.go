// Package countdown implements the session time budget: a one-second tick
// with one-shot warning, critical, and expiry callbacks.
package countdown

import (
	"time"

	"github.com/rbright/raybot/internal/eventloop"
)

// Option configures a Timer.
type Option func(*Timer)

// WithTickInterval overrides the one-second tick. Tests rarely need this; the
// manual scheduler already controls time.
func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithWarning fires fn once when the remaining seconds equal seconds.
func WithWarning(seconds int, fn func(remaining int)) Option {
	return func(t *Timer) {
		t.warning = threshold{at: seconds, fn: fn}
	}
}

// WithCritical fires fn once when the remaining seconds equal seconds.
func WithCritical(seconds int, fn func(remaining int)) Option {
	return func(t *Timer) {
		t.critical = threshold{at: seconds, fn: fn}
	}
}

// WithExpiry fires fn once when the counter reaches zero. The timer is
// already stopped when fn runs.
func WithExpiry(fn func()) Option {
	return func(t *Timer) {
		t.expiry = fn
	}
}

// WithTick runs fn after every decrement, before threshold callbacks.
func WithTick(fn func(remaining int)) Option {
	return func(t *Timer) {
		t.onTick = fn
	}
}

type threshold struct {
	at    int
	fn    func(int)
	fired bool
}

// Timer is a session countdown. It is driven by a Scheduler and must only be
// used from the scheduler's consumer goroutine.
type Timer struct {
	sched    eventloop.Scheduler
	interval time.Duration

	budget    int
	remaining int
	started   bool
	running   bool
	expired   bool
	pending   eventloop.Timer

	warning  threshold
	critical threshold
	expiry   func()
	onTick   func(int)
}

// New creates a stopped countdown with budget seconds remaining.
func New(sched eventloop.Scheduler, budget int, opts ...Option) *Timer {
	if budget < 0 {
		budget = 0
	}
	t := &Timer{
		sched:     sched,
		interval:  time.Second,
		budget:    budget,
		remaining: budget,
		warning:   threshold{at: -1},
		critical:  threshold{at: -1},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins ticking. The start is latched: later calls return false and
// never re-initialize the counter.
func (t *Timer) Start() bool {
	if t.started {
		return false
	}
	t.started = true
	if t.remaining <= 0 {
		t.finish()
		return true
	}
	t.running = true
	t.schedule()
	return true
}

// Stop cancels the pending tick. No callback runs after Stop returns.
func (t *Timer) Stop() {
	t.running = false
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Remaining returns the seconds left, floored at zero.
func (t *Timer) Remaining() int {
	return t.remaining
}

// Budget returns the configured session length in seconds.
func (t *Timer) Budget() int {
	return t.budget
}

// Started reports whether Start has ever been called.
func (t *Timer) Started() bool {
	return t.started
}

// Running reports whether a tick is pending.
func (t *Timer) Running() bool {
	return t.running
}

// Expired reports whether the counter has reached zero.
func (t *Timer) Expired() bool {
	return t.expired
}

func (t *Timer) schedule() {
	t.pending = t.sched.After(t.interval, t.tick)
}

func (t *Timer) tick() {
	t.pending = nil
	if !t.running {
		return
	}

	if t.remaining > 0 {
		t.remaining--
	}
	if t.onTick != nil {
		t.onTick(t.remaining)
	}
	if !t.running {
		return
	}

	fire(&t.warning, t.remaining)
	if !t.running {
		return
	}
	fire(&t.critical, t.remaining)
	if !t.running {
		return
	}

	if t.remaining == 0 {
		t.finish()
		return
	}
	t.schedule()
}

func (t *Timer) finish() {
	t.Stop()
	if t.expired {
		return
	}
	t.expired = true
	if t.expiry != nil {
		t.expiry()
	}
}

// fire runs th.fn the first time remaining equals the threshold exactly.
func fire(th *threshold, remaining int) {
	if th.fired || th.at < 0 || remaining != th.at {
		return
	}
	th.fired = true
	if th.fn != nil {
		th.fn(remaining)
	}
}
