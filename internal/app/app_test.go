package app

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbright/raybot/internal/archive"
	"github.com/rbright/raybot/internal/cli"
	"github.com/rbright/raybot/internal/interview"
	"github.com/rbright/raybot/internal/ipc"
	"github.com/rbright/raybot/internal/transcript"
	"github.com/stretchr/testify/require"
)

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "raybot")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteInvalidConfigFails(t *testing.T) {
	paths := setupRunnerEnv(t, `{"session": {"duration_seconds": 0}}`)

	var stderr bytes.Buffer
	runner := Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "status"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "error:")
}

func TestRunnerStatusIdleWhenSocketUnavailable(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "status"})
	require.Equal(t, 0, exitCode)
	require.Equal(t, "idle\n", stdout.String())
	require.Empty(t, stderr.String())
}

func TestRunnerKeepsConfigWarningsOffClientCommands(t *testing.T) {
	paths := setupRunnerEnv(t, `{"session": {"duration_seconds": 600, "warning_seconds": 900}}`)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "status"})
	require.Equal(t, 0, exitCode)
	require.Equal(t, "idle\n", stdout.String())
	require.Empty(t, stderr.String())

	exitCode = runner.Execute(context.Background(), []string{"--config", paths.configPath, "doctor"})
	require.Contains(t, []int{0, 1}, exitCode)
	require.Contains(t, stderr.String(), "warning: session.warning_seconds=900")
	require.Contains(t, stderr.String(), "warning: speech.capture_cmd is unset")
}

func TestReportsConfigWarnings(t *testing.T) {
	require.True(t, reportsConfigWarnings(cli.CommandServe))
	require.True(t, reportsConfigWarnings(cli.CommandDoctor))
	for _, cmd := range []cli.Command{cli.CommandStatus, cli.CommandAsk, cli.CommandReplay, cli.CommandTranscript} {
		require.False(t, reportsConfigWarnings(cmd), cmd)
	}
}

func TestRunnerCommandWithoutOwnerFails(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	var stderr bytes.Buffer
	runner := Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "end"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "no active raybot session")
}

func TestRunnerForwardsCommandsToOwner(t *testing.T) {
	paths := setupRunnerEnv(t, "")
	requests := make(chan ipc.Request, 8)

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		requests <- req
		return ipc.Response{OK: true, State: "ready", Message: req.Command + " handled"}
	})
	defer shutdown()

	cases := []struct {
		args []string
		want ipc.Request
	}{
		{args: []string{"ask", "q1"}, want: ipc.Request{Command: "ask", Args: []string{"q1"}}},
		{args: []string{"followup", "what", "broke", "first?"}, want: ipc.Request{Command: "followup", Text: "what broke first?"}},
		{args: []string{"panel", "salary?"}, want: ipc.Request{Command: "panel", Text: "salary?"}},
		{args: []string{"resize", "-2"}, want: ipc.Request{Command: "resize", Args: []string{"-2"}}},
		{args: []string{"end"}, want: ipc.Request{Command: "end"}},
	}

	for _, tc := range cases {
		var stdout bytes.Buffer
		var stderr bytes.Buffer
		runner := Runner{Stdout: &stdout, Stderr: &stderr}

		exitCode := runner.Execute(context.Background(), append([]string{"--config", paths.configPath}, tc.args...))
		require.Equal(t, 0, exitCode, tc.args)
		require.Empty(t, stderr.String(), tc.args)
		require.Equal(t, tc.want.Command+" handled\n", stdout.String())
		require.Equal(t, tc.want, <-requests)
	}
}

func TestRunnerReportsRejectedCommand(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		return ipc.Response{OK: false, State: "idle", Error: "replay unavailable"}
	})
	defer shutdown()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "replay"})
	require.Equal(t, 1, exitCode)
	require.Empty(t, stdout.String())
	require.Equal(t, "error: replay unavailable\n", stderr.String())
}

func TestRunnerStatusFallsBackToIdleWhenServerStateEmpty(t *testing.T) {
	paths := setupRunnerEnv(t, "")

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		return ipc.Response{OK: true, State: ""}
	})
	defer shutdown()

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "status"})
	require.Equal(t, 0, exitCode)
	require.Equal(t, "idle\n", stdout.String())
}

func TestRunnerTranscriptPrintsAndSaves(t *testing.T) {
	paths := setupRunnerEnv(t, "")
	const export = "Raybot interview transcript\n\n[10:00:00] You: Tell me about a project.\n"

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		require.Equal(t, "transcript", req.Command)
		return ipc.Response{OK: true, State: "complete", Message: export}
	})
	defer shutdown()

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}
	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "transcript"}))
	require.Equal(t, export, stdout.String())

	dir := t.TempDir()
	stdout.Reset()
	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "transcript", dir}))
	saved := filepath.Join(dir, "raybot-transcript.txt")
	require.Equal(t, "saved "+saved+"\n", stdout.String())

	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	require.Equal(t, export, string(data))
}

func TestRunnerCopyUsesClipboardCommand(t *testing.T) {
	clipboardOut := filepath.Join(t.TempDir(), "clipboard.txt")
	script := filepath.Join(t.TempDir(), "clip.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env bash\ncat > \"$1\"\n"), 0o755))

	paths := setupRunnerEnv(t, fmt.Sprintf(`{"clipboard_cmd": %q}`, script+" "+clipboardOut))

	shutdown := startIPCServerForRunnerTest(t, paths.socketPath(), func(_ context.Context, req ipc.Request) ipc.Response {
		return ipc.Response{OK: true, State: "complete", Message: "transcript body\n"}
	})
	defer shutdown()

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}
	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "copy"}), stderr.String())
	require.Equal(t, "copied\n", stdout.String())

	data, err := os.ReadFile(clipboardOut)
	require.NoError(t, err)
	require.Equal(t, "transcript body\n", string(data))
}

func TestRunnerQuestionsFallsBackToConfig(t *testing.T) {
	paths := setupRunnerEnv(t, `{"questions": [{"id": "why", "text": "Why this team?", "answer": "Because the work matters."}]}`)

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "questions"}))
	require.Equal(t, "why  Why this team?\n", stdout.String())
}

func TestRunnerHistoryListsAndShowsArchivedSessions(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "archive.db")
	paths := setupRunnerEnv(t, fmt.Sprintf(`{"archive": {"enable": true, "path": %q}}`, archivePath))

	store, err := archive.Open(archivePath)
	require.NoError(t, err)
	ended := time.Date(2026, 3, 1, 10, 5, 0, 0, time.UTC)
	require.NoError(t, store.Archive(context.Background(), interview.Record{
		SessionID: "session-1",
		StartedAt: ended.Add(-5 * time.Minute),
		EndedAt:   ended,
		Entries: []transcript.Entry{
			{Role: transcript.RoleUser, Content: "Tell me about a project.", Timestamp: "10:00:10"},
			{Role: transcript.RoleAssistant, Content: "I rebuilt the release pipeline.", Timestamp: "10:00:20"},
		},
		Export: "Raybot interview transcript\n\n[10:00:10] You: Tell me about a project.\n",
	}))
	require.NoError(t, store.Close())

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "history"}), stderr.String())
	require.Contains(t, stdout.String(), "session-1")
	require.Contains(t, stdout.String(), "2 entries")
	require.Contains(t, stdout.String(), "Tell me about a project.")

	stdout.Reset()
	require.Equal(t, 0, runner.Execute(context.Background(), []string{"--config", paths.configPath, "history", "session-1"}))
	require.Equal(t, "Raybot interview transcript\n\n[10:00:10] You: Tell me about a project.\n", stdout.String())

	stderr.Reset()
	require.Equal(t, 1, runner.Execute(context.Background(), []string{"--config", paths.configPath, "history", "missing"}))
	require.Contains(t, stderr.String(), `no archived session "missing"`)
}

func TestRunnerHistoryDisabled(t *testing.T) {
	paths := setupRunnerEnv(t, `{"archive": {"enable": false}}`)

	var stderr bytes.Buffer
	runner := Runner{Stdout: &bytes.Buffer{}, Stderr: &stderr}

	require.Equal(t, 1, runner.Execute(context.Background(), []string{"--config", paths.configPath, "history"}))
	require.Contains(t, stderr.String(), "archive is disabled")
}

func TestRunnerDoctorPrintsReport(t *testing.T) {
	paths := setupRunnerEnv(t, `{"indicator": {"enable": false}, "clipboard_cmd": "definitely-missing-clipboard"}`)

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "doctor"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "[OK] config: loaded")
	require.Contains(t, stdout.String(), "[FAIL] clipboard_cmd: binary not found")
}

func TestServeOwnsSessionUntilCancelled(t *testing.T) {
	paths := setupRunnerEnv(t, fmt.Sprintf(`{
  // keep the session in connecting while the test inspects it
  "timing": {"connect_ms": 60000},
  "indicator": {"enable": false},
  "archive": {"path": %q},
}`, filepath.Join(t.TempDir(), "archive.db")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var serveOut bytes.Buffer
	var serveErr bytes.Buffer
	done := make(chan int, 1)
	go func() {
		runner := Runner{Stdout: &serveOut, Stderr: &serveErr}
		done <- runner.Execute(ctx, []string{"--config", paths.configPath, "serve"})
	}()

	require.Eventually(t, func() bool {
		alive, _ := ipc.Probe(context.Background(), paths.socketPath(), 100*time.Millisecond)
		return alive
	}, 5*time.Second, 20*time.Millisecond)

	run := func(args ...string) (int, string, string) {
		var stdout bytes.Buffer
		var stderr bytes.Buffer
		runner := Runner{Stdout: &stdout, Stderr: &stderr}
		code := runner.Execute(context.Background(), append([]string{"--config", paths.configPath}, args...))
		return code, stdout.String(), stderr.String()
	}

	code, out, _ := run("status")
	require.Equal(t, 0, code)
	require.Equal(t, "idle\n", out)

	code, _, errOut := run("ask", "nope")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, "unknown question")

	code, out, _ = run("start")
	require.Equal(t, 0, code)
	require.Equal(t, "session starting\n", out)

	code, out, _ = run("status")
	require.Equal(t, 0, code)
	require.Equal(t, "connecting\n", out)

	code, out, _ = run("questions")
	require.Equal(t, 0, code)
	require.Contains(t, out, "q1")

	code, _, errOut = run("serve")
	require.Equal(t, 1, code)
	require.Contains(t, errOut, ipc.ErrAlreadyRunning.Error())

	cancel()
	select {
	case exitCode := <-done:
		require.Equal(t, 0, exitCode, serveErr.String())
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
	require.Contains(t, serveOut.String(), "raybot serving on")

	_, err := os.Stat(paths.socketPath())
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRequestForSeparatesTextAndArgs(t *testing.T) {
	require.Equal(t,
		ipc.Request{Command: "utter", Text: "I led it."},
		requestFor(cli.Parsed{Command: cli.CommandUtter, Args: []string{"I", "led", "it."}}),
	)
	require.Equal(t,
		ipc.Request{Command: "mode", Args: []string{"keyboard"}},
		requestFor(cli.Parsed{Command: cli.CommandMode, Args: []string{"keyboard"}}),
	)
}

func TestTryForwardTreatsMissingSocketAsUnhandled(t *testing.T) {
	_, handled, err := tryForward(context.Background(), filepath.Join(t.TempDir(), "raybot.sock"), ipc.Request{Command: "status"})
	require.False(t, handled)
	require.NoError(t, err)
}

func TestTryForwardTreatsReadFailuresAsHandledErrors(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "raybot.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, acceptErr := listener.Accept()
		if acceptErr == nil {
			_ = conn.Close()
		}
	}()

	_, handled, err := tryForward(context.Background(), socketPath, ipc.Request{Command: "status"})
	require.True(t, handled)
	require.Error(t, err)
	require.Contains(t, err.Error(), "forward command \"status\":")

	<-done
	require.NoError(t, listener.Close())
}

type runnerPaths struct {
	configPath string
	runtimeDir string
}

func (p runnerPaths) socketPath() string {
	return filepath.Join(p.runtimeDir, "raybot.sock")
}

func setupRunnerEnv(t *testing.T, config string) runnerPaths {
	t.Helper()

	runtimeDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)
	t.Chdir(t.TempDir())

	configPath := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(configPath, []byte(config+"\n"), 0o600))

	return runnerPaths{configPath: configPath, runtimeDir: runtimeDir}
}

func startIPCServerForRunnerTest(t *testing.T, socketPath string, handler func(context.Context, ipc.Request) ipc.Response) func() {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ipc.Serve(ctx, listener, ipc.HandlerFunc(handler))
	}()

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}
