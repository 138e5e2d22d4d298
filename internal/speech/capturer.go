package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"

	"github.com/rbright/raybot/internal/interview"
)

// Sink receives finished captures. It must not block.
type Sink func(interview.CaptureResult)

// CommandCapturer runs a recognizer command per capture. The command's
// stdout, one finalized segment per line, is the utterance.
type CommandCapturer struct {
	argv   []string
	sink   Sink
	logger *slog.Logger

	mu     sync.Mutex
	active map[uint64]context.CancelFunc
	wg     sync.WaitGroup
}

// NewCommandCapturer returns a capturer for argv that reports to sink.
func NewCommandCapturer(argv []string, sink Sink, logger *slog.Logger) (*CommandCapturer, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("capture command argv cannot be empty")
	}
	if sink == nil {
		return nil, fmt.Errorf("capture sink is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandCapturer{
		argv:   append([]string(nil), argv...),
		sink:   sink,
		logger: logger,
		active: make(map[uint64]context.CancelFunc),
	}, nil
}

// Start launches the recognizer for capture generation.
func (c *CommandCapturer) Start(ctx context.Context, generation uint64) error {
	captureCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(captureCtx, c.argv[0], c.argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("start capture command %s: %w", c.argv[0], err)
	}

	c.mu.Lock()
	c.active[generation] = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := cmd.Wait()

		c.mu.Lock()
		_, live := c.active[generation]
		delete(c.active, generation)
		c.mu.Unlock()
		cancel()

		if !live {
			c.logger.Debug("capture cancelled", "generation", generation)
			return
		}
		if err != nil {
			c.sink(interview.CaptureResult{
				Generation: generation,
				Err:        fmt.Errorf("capture command %s: %w: %s", c.argv[0], err, strings.TrimSpace(stderr.String())),
			})
			return
		}
		c.sink(interview.CaptureResult{Generation: generation, Text: joinSegments(stdout.String())})
	}()
	return nil
}

// Cancel stops the recognizer for generation. Its result is never delivered.
func (c *CommandCapturer) Cancel(_ context.Context, generation uint64) error {
	c.mu.Lock()
	cancel, ok := c.active[generation]
	delete(c.active, generation)
	c.mu.Unlock()
	if ok {
		cancel()
	}
	return nil
}

// Wait blocks until every started recognizer has exited.
func (c *CommandCapturer) Wait() {
	c.wg.Wait()
}

func joinSegments(out string) string {
	var parts []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// PushCapturer expects captures to arrive from outside, for example the
// `utter` IPC command. Start and Cancel only log.
type PushCapturer struct {
	Logger *slog.Logger
}

func (p PushCapturer) Start(_ context.Context, generation uint64) error {
	if p.Logger != nil {
		p.Logger.Info("awaiting pushed utterance", "generation", generation)
	}
	return nil
}

func (p PushCapturer) Cancel(_ context.Context, generation uint64) error {
	if p.Logger != nil {
		p.Logger.Debug("pushed utterance cancelled", "generation", generation)
	}
	return nil
}
