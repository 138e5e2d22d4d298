package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/rbright/raybot/internal/cli"
	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/ipc"
	"github.com/rbright/raybot/internal/output"
)

const forwardTimeout = 2500 * time.Millisecond

var errNoOwner = errors.New("no active raybot session; run `raybot serve` first")

// requestFor maps a parsed command onto the owner's IPC request. Free-text
// commands travel in Text so spacing survives the hop.
func requestFor(parsed cli.Parsed) ipc.Request {
	req := ipc.Request{Command: string(parsed.Command)}
	switch parsed.Command {
	case cli.CommandFollowUp, cli.CommandUtter, cli.CommandPanel:
		req.Text = parsed.Text()
	default:
		req.Args = parsed.Args
	}
	return req
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "idle")
		return exitOK
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: "status"})
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return exitFailure
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return exitOK
	}

	fmt.Fprintln(r.Stdout, "idle")
	return exitOK
}

// commandQuestions asks the owner first and falls back to local config.
func (r Runner) commandQuestions(ctx context.Context, cfg config.Config) int {
	questions := cfg.Questions
	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := tryForward(ctx, socketPath, ipc.Request{Command: "questions"})
		if handled && err == nil && len(resp.Data) > 0 {
			var remote []config.Question
			if err := json.Unmarshal(resp.Data, &remote); err != nil {
				fmt.Fprintf(r.Stderr, "error: decode questions: %v\n", err)
				return exitFailure
			}
			questions = remote
		}
	}

	tw := tabwriter.NewWriter(r.Stdout, 0, 0, 2, ' ', 0)
	for _, q := range questions {
		fmt.Fprintf(tw, "%s\t%s\n", q.ID, q.Text)
	}
	_ = tw.Flush()
	return exitOK
}

func (r Runner) commandTranscript(ctx context.Context, args []string, logger *slog.Logger) int {
	text, code := r.exportText(ctx)
	if code != exitOK {
		return code
	}
	if len(args) == 0 {
		fmt.Fprint(r.Stdout, text)
		return exitOK
	}

	path, err := output.NewExporter(nil, logger).WriteFile(args[0], text)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFailure
	}
	fmt.Fprintf(r.Stdout, "saved %s\n", path)
	return exitOK
}

func (r Runner) commandCopy(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	text, code := r.exportText(ctx)
	if code != exitOK {
		return code
	}
	if err := output.NewExporter(cfg.Clipboard.Argv, logger).Copy(ctx, text); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return exitFailure
	}
	fmt.Fprintln(r.Stdout, "copied")
	return exitOK
}

func (r Runner) exportText(ctx context.Context) (string, int) {
	resp, code := r.forward(ctx, ipc.Request{Command: "transcript"})
	if code != exitOK {
		return "", code
	}
	return resp.Message, exitOK
}

func (r Runner) forwardOrFail(ctx context.Context, req ipc.Request) int {
	resp, code := r.forward(ctx, req)
	if code == exitOK && resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return code
}

func (r Runner) forward(ctx context.Context, req ipc.Request) (ipc.Response, int) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return ipc.Response{}, exitFailure
	}

	resp, handled, err := tryForward(ctx, socketPath, req)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: %v\n", errNoOwner)
		return ipc.Response{}, exitFailure
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return resp, exitFailure
	}
	return resp, exitOK
}

// tryForward reports handled=false only when no owner is listening. A
// rejected command is handled with a non-nil error.
func tryForward(ctx context.Context, socketPath string, req ipc.Request) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, req, forwardTimeout)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if ipc.IsUnavailable(err) {
		return ipc.Response{}, false, nil
	}
	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", req.Command, err)
}
