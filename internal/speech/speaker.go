// Package speech adapts external commands to the interview's playback and
// capture ports. Recognition and synthesis stay inside those commands.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// waitDelay bounds how long a killed command may hold its pipes open.
const waitDelay = 250 * time.Millisecond

// CommandSpeaker pipes each utterance to a TTS command on stdin. Playback
// runs in the background; a new utterance stops the previous one.
type CommandSpeaker struct {
	argv   []string
	logger *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCommandSpeaker returns a speaker for argv. An empty argv is rejected.
func NewCommandSpeaker(argv []string, logger *slog.Logger) (*CommandSpeaker, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("tts command argv cannot be empty")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandSpeaker{argv: append([]string(nil), argv...), logger: logger}, nil
}

// Speak starts playback of text. The expected display duration is exported
// to the command as RAYBOT_SPEECH_MS so it can pace itself.
func (s *CommandSpeaker) Speak(ctx context.Context, text string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	playCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(playCtx, s.argv[0], s.argv[1:]...)
	cmd.WaitDelay = waitDelay
	cmd.Env = append(cmd.Environ(), "RAYBOT_SPEECH_MS="+strconv.FormatInt(d.Milliseconds(), 10))

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return fmt.Errorf("open stdin for %s: %w", s.argv[0], err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		_ = stdin.Close()
		return fmt.Errorf("start tts command %s: %w", s.argv[0], err)
	}
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		if _, err := stdin.Write([]byte(text)); err != nil {
			s.logger.Warn("tts stdin write failed", "error", err.Error())
		}
		_ = stdin.Close()
		if err := cmd.Wait(); err != nil && playCtx.Err() == nil {
			s.logger.Error("tts command failed", "cmd", s.argv[0], "error", err.Error())
		}
	}()
	return nil
}

// Stop cancels any playback in progress and waits for it to exit.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
