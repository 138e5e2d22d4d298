// Package output hands the exported transcript to the desktop: clipboard
// copy through a configured command and plain-text file download.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultFileName is the download name used when no path is given.
const DefaultFileName = "raybot-transcript.txt"

const clipboardTimeout = 2 * time.Second

// ErrEmptyTranscript is returned when there is nothing to export.
var ErrEmptyTranscript = errors.New("transcript is empty")

// Exporter copies or saves transcript export text.
type Exporter struct {
	clipboard []string
	logger    *slog.Logger
}

// NewExporter builds an exporter that copies through clipboardArgv.
func NewExporter(clipboardArgv []string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Exporter{clipboard: clipboardArgv, logger: logger}
}

// Copy writes text to the clipboard command's stdin.
func (e *Exporter) Copy(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyTranscript
	}

	ctx, cancel := context.WithTimeout(ctx, clipboardTimeout)
	defer cancel()
	if err := runCommandWithInput(ctx, e.clipboard, text); err != nil {
		return fmt.Errorf("set clipboard: %w", err)
	}
	e.logger.Info("transcript copied", "bytes", len(text))
	return nil
}

// WriteFile saves text to path and returns the path written. An empty path
// means DefaultFileName in the working directory; a directory gets
// DefaultFileName inside it.
func (e *Exporter) WriteFile(path string, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscript
	}

	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultFileName
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}

	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("write transcript %s: %w", path, err)
	}
	e.logger.Info("transcript saved", "path", path, "bytes", len(text))
	return path, nil
}

// runCommandWithInput executes argv and writes input to its stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(input)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if trimmed := strings.TrimSpace(string(out)); trimmed != "" {
			return fmt.Errorf("run %s: %w (%s)", argv[0], err, trimmed)
		}
		return fmt.Errorf("run %s: %w", argv[0], err)
	}
	return nil
}
