package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/raybot/internal/archive"
	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/eventloop"
	"github.com/rbright/raybot/internal/indicator"
	"github.com/rbright/raybot/internal/interview"
	"github.com/rbright/raybot/internal/ipc"
	"github.com/rbright/raybot/internal/speech"
	"github.com/rbright/raybot/internal/web"
)

const loopBuffer = 64

// owner holds everything `raybot serve` runs for one process lifetime.
type owner struct {
	cfg      config.Config
	logger   *slog.Logger
	runtime  *interview.Runtime
	hub      *web.Hub
	store    *archive.Store
	notifier *indicator.Notifier
	speaker  *speech.CommandSpeaker
	capturer *speech.CommandCapturer
}

func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFailure
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFailure
	}
	defer func() { _ = listener.Close() }()

	o, err := newOwner(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFailure
	}
	defer o.close()

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		name string
		err  error
	}
	results := make(chan result, 3)
	running := 0
	start := func(name string, fn func(context.Context) error) {
		running++
		go func() { results <- result{name: name, err: fn(serveCtx)} }()
	}

	start("interview", o.runtime.Run)
	start("ipc", func(ctx context.Context) error {
		return ipc.Serve(ctx, listener, ipc.HandlerFunc(o.runtime.HandleWithTimeout))
	})
	if cfg.HTTP.Enable {
		server := web.NewServer(ipc.HandlerFunc(o.runtime.HandleWithTimeout), o.hub, o.history(), logger)
		start("http", func(ctx context.Context) error {
			return server.ListenAndServe(ctx, cfg.HTTP.Addr)
		})
	}

	logger.Info("interview owner ready", "socket", socketPath, "http", cfg.HTTP.Enable)
	fmt.Fprintf(r.Stdout, "raybot serving on %s\n", socketPath)

	code := exitOK
	for ; running > 0; running-- {
		res := <-results
		cancel()
		if res.err != nil && !errors.Is(res.err, context.Canceled) {
			logger.Error("owner component failed", "component", res.name, "error", res.err.Error())
			fmt.Fprintf(r.Stderr, "error: %s: %v\n", res.name, res.err)
			code = exitFailure
		}
	}
	logger.Info("interview owner stopped", "exit_code", code)
	return code
}

func newOwner(cfg config.Config, logger *slog.Logger) (*owner, error) {
	o := &owner{cfg: cfg, logger: logger}

	store, err := openArchive(cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	o.store = store

	deps := interview.Deps{Logger: logger}

	if len(cfg.Speech.TTS.Argv) > 0 {
		o.speaker, err = speech.NewCommandSpeaker(cfg.Speech.TTS.Argv, logger)
		if err != nil {
			o.close()
			return nil, err
		}
		deps.Speaker = o.speaker
	}

	// The capture sink needs the runtime, which needs the deps.
	var rt *interview.Runtime
	if len(cfg.Speech.Capture.Argv) > 0 {
		o.capturer, err = speech.NewCommandCapturer(cfg.Speech.Capture.Argv, func(res interview.CaptureResult) {
			rt.Deliver(res)
		}, logger)
		if err != nil {
			o.close()
			return nil, err
		}
		deps.Capturer = o.capturer
	} else {
		deps.Capturer = speech.PushCapturer{Logger: logger}
	}

	if cfg.Indicator.Enable {
		o.notifier = indicator.New(cfg.Indicator, logger)
		deps.Indicator = o.notifier
	}

	if cfg.HTTP.Enable {
		o.hub = web.NewHub(logger)
		deps.View = interview.MultiView{o.hub}
	}

	if o.store != nil {
		deps.Archiver = archiveLogger(o.store, logger)
	}

	rt = interview.NewRuntime(eventloop.New(loopBuffer), func(sched eventloop.Scheduler) *interview.Machine {
		return interview.New(cfg, sched, deps)
	})
	o.runtime = rt
	return o, nil
}

// history returns the archive as a web.History, or nil when disabled.
func (o *owner) history() web.History {
	if o.store == nil {
		return nil
	}
	return o.store
}

func (o *owner) close() {
	if o.speaker != nil {
		o.speaker.Stop()
	}
	if o.capturer != nil {
		o.capturer.Wait()
	}
	if o.notifier != nil {
		o.notifier.Close()
	}
	if o.store != nil {
		if err := o.store.Close(); err != nil {
			o.logger.Error("close archive failed", "error", err.Error())
		}
	}
}

// archiveLogger records each archived session in the runtime log.
func archiveLogger(next interview.Archiver, logger *slog.Logger) interview.Archiver {
	return interview.ArchiveFunc(func(ctx context.Context, rec interview.Record) error {
		err := next.Archive(ctx, rec)
		fields := []any{
			"session_id", rec.SessionID,
			"started_at", rec.StartedAt.Format(time.RFC3339Nano),
			"ended_at", rec.EndedAt.Format(time.RFC3339Nano),
			"duration_ms", rec.EndedAt.Sub(rec.StartedAt).Milliseconds(),
			"entries", len(rec.Entries),
			"export_bytes", len(rec.Export),
		}
		if err != nil {
			logger.Error("transcript archive failed", append(fields, "error", err.Error())...)
			return err
		}
		logger.Info("transcript archived", fields...)
		return nil
	})
}
