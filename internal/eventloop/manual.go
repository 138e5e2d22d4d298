package eventloop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler whose clock only moves on Advance.
// It is not safe for concurrent use; tests drive it from one goroutine.
type Manual struct {
	now     time.Time
	seq     uint64
	pending []*manualTimer
}

// NewManual creates a manual scheduler starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// After registers fn to run when the clock reaches now+d.
func (m *Manual) After(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{due: m.now.Add(d), seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

// Now returns the manual clock time.
func (m *Manual) Now() time.Time {
	return m.now
}

// Advance moves the clock forward by d, running every callback that becomes
// due in (due, registration) order. Callbacks scheduled while advancing run
// too when they fall inside the window.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		next := m.nextDue(target)
		if next == nil {
			break
		}
		m.now = next.due
		next.fired = true
		next.fn()
	}
	m.now = target
}

// Flush runs callbacks until nothing is pending or limit callbacks have run.
// It returns the number of callbacks executed.
func (m *Manual) Flush(limit int) int {
	ran := 0
	for ran < limit {
		next := m.nextDue(time.Time{})
		if next == nil {
			return ran
		}
		if next.due.After(m.now) {
			m.now = next.due
		}
		next.fired = true
		next.fn()
		ran++
	}
	return ran
}

// Pending returns the number of callbacks that have not run or been stopped.
func (m *Manual) Pending() int {
	m.compact()
	return len(m.pending)
}

// nextDue pops the earliest live timer due at or before limit. A zero limit
// means no upper bound.
func (m *Manual) nextDue(limit time.Time) *manualTimer {
	m.compact()
	if len(m.pending) == 0 {
		return nil
	}
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].due.Equal(m.pending[j].due) {
			return m.pending[i].seq < m.pending[j].seq
		}
		return m.pending[i].due.Before(m.pending[j].due)
	})
	head := m.pending[0]
	if !limit.IsZero() && head.due.After(limit) {
		return nil
	}
	m.pending = m.pending[1:]
	return head
}

func (m *Manual) compact() {
	live := m.pending[:0]
	for _, t := range m.pending {
		if t.stopped || t.fired {
			continue
		}
		live = append(live, t)
	}
	m.pending = live
}
