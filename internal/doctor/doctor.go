// Package doctor runs readiness diagnostics for config, desktop tools, the
// speech service, and the transcript archive.
package doctor

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/raybot/internal/archive"
	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/ipc"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}

	checks = append(checks, Check{
		Name:    "questions",
		Pass:    len(cfg.Config.Questions) > 0,
		Message: fmt.Sprintf("%d scripted question(s)", len(cfg.Config.Questions)),
	})

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "owner socket directory available", "XDG_RUNTIME_DIR is empty; client commands cannot reach the owner"))
	checks = append(checks, checkOwner(ctx))

	checks = append(checks, checkCommand(cfg.Config.Clipboard.Argv, "clipboard_cmd"))
	checks = append(checks, checkOptionalCommand(cfg.Config.Speech.TTS.Argv, "speech.tts_cmd", "speech playback is silent"))
	checks = append(checks, checkOptionalCommand(cfg.Config.Speech.Capture.Argv, "speech.capture_cmd", "voice follow-ups arrive via `raybot utter`"))
	checks = append(checks, checkIndicator(cfg.Config.Indicator)...)
	checks = append(checks, checkSpeechHealth(ctx, cfg.Config.Speech.HealthGRPC))
	checks = append(checks, checkHTTP(cfg.Config.HTTP))
	checks = append(checks, checkArchive(ctx, cfg.Config.Archive))

	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	message := fmt.Sprintf("loaded %q", cfg.Path)
	if !cfg.Exists {
		message = fmt.Sprintf("%q not found; using defaults", cfg.Path)
	}
	if n := len(cfg.Warnings); n > 0 {
		message = fmt.Sprintf("%s (%d warning(s))", message, n)
	}
	return Check{Name: "config", Pass: true, Message: message}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	check := checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
	check.Name = name
	return check
}

// checkOptionalCommand passes when argv is unset, noting the fallback.
func checkOptionalCommand(argv []string, name string, fallback string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: true, Message: "not configured; " + fallback}
	}
	return checkCommand(argv, name)
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

func checkIndicator(cfg config.IndicatorConfig) []Check {
	if !cfg.Enable {
		return []Check{{Name: "indicator", Pass: true, Message: "disabled"}}
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Backend), "desktop") {
		return []Check{checkBinary("busctl", "desktop notifications via DBus")}
	}
	return []Check{
		checkBinary("hyprctl", "Hyprland notifications"),
		checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
			return strings.TrimSpace(v) != ""
		}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"),
	}
}

func checkHTTP(cfg config.HTTPConfig) Check {
	if !cfg.Enable {
		return Check{Name: "http", Pass: true, Message: "disabled"}
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return Check{Name: "http", Pass: false, Message: fmt.Sprintf("invalid addr %q: %v", cfg.Addr, err)}
	}
	return Check{Name: "http", Pass: true, Message: "serving on " + cfg.Addr}
}

// checkArchive opens the store, which creates the schema when missing.
func checkArchive(ctx context.Context, cfg config.ArchiveConfig) Check {
	if !cfg.Enable {
		return Check{Name: "archive", Pass: true, Message: "disabled"}
	}
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		var err error
		if path, err = archive.DefaultPath(); err != nil {
			return Check{Name: "archive", Pass: false, Message: err.Error()}
		}
	}
	store, err := archive.Open(path)
	if err != nil {
		return Check{Name: "archive", Pass: false, Message: err.Error()}
	}
	defer store.Close()
	if err := store.Ping(ctx); err != nil {
		return Check{Name: "archive", Pass: false, Message: fmt.Sprintf("ping %s: %v", path, err)}
	}
	return Check{Name: "archive", Pass: true, Message: "ready at " + path}
}

// checkOwner reports whether an interview owner answers on the socket.
func checkOwner(ctx context.Context) Check {
	path, err := ipc.RuntimeSocketPath()
	if err != nil {
		return Check{Name: "owner", Pass: true, Message: "not running"}
	}
	alive, err := ipc.Probe(ctx, path, 300*time.Millisecond)
	if err != nil {
		return Check{Name: "owner", Pass: false, Message: err.Error()}
	}
	if alive {
		return Check{Name: "owner", Pass: true, Message: "running at " + path}
	}
	return Check{Name: "owner", Pass: true, Message: "not running"}
}
