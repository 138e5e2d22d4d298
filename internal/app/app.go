package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/rbright/raybot/internal/cli"
	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/doctor"
	"github.com/rbright/raybot/internal/logging"
	"github.com/rbright/raybot/internal/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("raybot"))
		return exitUsage
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("raybot"))
		return exitOK
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return exitOK
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(r.Stderr, "warning: load .env: %v\n", err)
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return exitFailure
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return exitFailure
	}
	for _, w := range cfgLoaded.Warnings {
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
		if !reportsConfigWarnings(parsed.Command) {
			continue
		}
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	cfg := cfgLoaded.Config
	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return exitOK
		}
		return exitFailure
	case cli.CommandServe:
		return r.commandServe(ctx, cfg, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandQuestions:
		return r.commandQuestions(ctx, cfg)
	case cli.CommandTranscript:
		return r.commandTranscript(ctx, parsed.Args, logger)
	case cli.CommandCopy:
		return r.commandCopy(ctx, cfg, logger)
	case cli.CommandHistory:
		return r.commandHistory(ctx, cfg, parsed.Args)
	default:
		return r.forwardOrFail(ctx, requestFor(parsed))
	}
}

// reportsConfigWarnings limits stderr warnings to the commands that act on
// the whole config. Client commands only forward to the owner.
func reportsConfigWarnings(cmd cli.Command) bool {
	return cmd == cli.CommandServe || cmd == cli.CommandDoctor
}
