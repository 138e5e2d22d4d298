package interview

import (
	"context"
	"time"

	"github.com/rbright/raybot/internal/eventloop"
	"github.com/rbright/raybot/internal/ipc"
)

// Runtime confines a Machine to an event loop. User commands, capture
// results, and timer callbacks are all producers on the same queue; the
// loop goroutine is the only consumer.
type Runtime struct {
	loop    *eventloop.Loop
	machine *Machine
}

// NewRuntime builds a loop-backed machine. The returned runtime must be
// started with Run before commands are accepted.
func NewRuntime(loop *eventloop.Loop, build func(eventloop.Scheduler) *Machine) *Runtime {
	return &Runtime{loop: loop, machine: build(loop)}
}

// Run binds ctx to the machine and consumes the queue until ctx ends.
func (r *Runtime) Run(ctx context.Context) error {
	r.machine.Bind(ctx)
	return r.loop.Run(ctx)
}

// Do runs fn against the machine on the loop and waits for it.
func (r *Runtime) Do(ctx context.Context, fn func(*Machine)) error {
	return r.loop.Call(ctx, func() { fn(r.machine) })
}

// Handle serves IPC requests by hopping onto the loop.
func (r *Runtime) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	var resp ipc.Response
	if err := r.Do(ctx, func(m *Machine) { resp = m.Handle(ctx, req) }); err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	return resp
}

// Snapshot reads machine state on the loop.
func (r *Runtime) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := r.Do(ctx, func(m *Machine) { snap = m.Snapshot() })
	return snap, err
}

// ExportText reads the formatted transcript on the loop.
func (r *Runtime) ExportText(ctx context.Context) (string, error) {
	var text string
	err := r.Do(ctx, func(m *Machine) { text = m.ExportText() })
	return text, err
}

// Deliver posts a capture result from any goroutine.
func (r *Runtime) Deliver(res CaptureResult) {
	if err := r.loop.Post(func() { _ = r.machine.DeliverCapture(res) }); err != nil {
		r.machine.logger.Debug("capture result dropped", "generation", res.Generation, "error", err.Error())
	}
}

// callTimeout bounds how long an IPC caller waits for the loop.
const callTimeout = 2 * time.Second

// HandleWithTimeout is Handle with a bounded wait, for socket clients.
func (r *Runtime) HandleWithTimeout(ctx context.Context, req ipc.Request) ipc.Response {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return r.Handle(ctx, req)
}
