// Package indicator mirrors interview activity on the desktop: a
// replaceable notification per busy state and short audio cues.
package indicator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/hypr"
	"github.com/rbright/raybot/internal/interview"
)

const (
	colorListening = "rgb(89b4fa)"
	colorThinking  = "rgb(cba6f7)"
	colorSpeaking  = "rgb(a6e3a1)"
	colorError     = "rgb(f38ba8)"

	// busyTimeoutMS keeps a busy notification up until it is replaced or hidden.
	busyTimeoutMS = 300000
	dispatchLimit = 400 * time.Millisecond
	queueSize     = 16
)

var _ interview.Indicator = (*Notifier)(nil)

// Notifier routes indicator output to Hyprland or freedesktop DBus. Calls
// return immediately; notifications are dispatched in order by one worker
// so the interview loop never waits on hyprctl or busctl.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages

	qmu    sync.Mutex
	queue  chan func(context.Context) error
	closed bool
	done   chan struct{}

	mu                    sync.Mutex
	desktopNotificationID uint32

	soundMu sync.Mutex
	sounds  sync.WaitGroup
}

// New starts a notifier for cfg.
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: messagesFor(cfg),
		queue:    make(chan func(context.Context) error, queueSize),
		done:     make(chan struct{}),
	}
	go n.worker()
	return n
}

func (n *Notifier) ShowListening(ctx context.Context) {
	n.show(ctx, hypr.IconInfo, busyTimeoutMS, colorListening, n.messages.listening)
}

func (n *Notifier) ShowThinking(ctx context.Context) {
	n.show(ctx, hypr.IconInfo, busyTimeoutMS, colorThinking, n.messages.thinking)
}

func (n *Notifier) ShowSpeaking(ctx context.Context) {
	n.show(ctx, hypr.IconInfo, busyTimeoutMS, colorSpeaking, n.messages.speaking)
}

// ShowError shows text, or the configured error text when empty, for the
// configured error timeout.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if text == "" {
		text = n.messages.errorText
	}
	timeout := n.cfg.ErrorTimeoutMS
	if timeout <= 0 {
		timeout = 1200
	}
	n.show(ctx, hypr.IconError, timeout, colorError, text)
}

func (n *Notifier) CueStart(context.Context)      { n.playCue(cueStart) }
func (n *Notifier) CueEndingSoon(context.Context) { n.playCue(cueEndingSoon) }
func (n *Notifier) CueComplete(context.Context)   { n.playCue(cueComplete) }

// Hide dismisses the active notification.
func (n *Notifier) Hide(context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.enqueue(n.dismiss)
}

// Close flushes queued notifications and waits for cues to finish.
func (n *Notifier) Close() {
	n.qmu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.qmu.Unlock()
	<-n.done
	n.sounds.Wait()
}

func (n *Notifier) show(_ context.Context, icon int, timeoutMS int, color string, text string) {
	if !n.cfg.Enable {
		return
	}
	n.enqueue(func(ctx context.Context) error {
		return n.notify(ctx, hypr.Notification{Icon: icon, TimeoutMS: timeoutMS, Color: color, Text: text})
	})
}

func (n *Notifier) enqueue(fn func(context.Context) error) {
	n.qmu.Lock()
	defer n.qmu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- fn:
	default:
		n.logger.Debug("indicator queue full; notification dropped")
	}
}

func (n *Notifier) worker() {
	defer close(n.done)
	for fn := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchLimit)
		if err := fn(ctx); err != nil {
			n.logger.Debug("indicator dispatch failed", "error", err.Error())
		}
		cancel()
	}
}

func (n *Notifier) desktop() bool {
	return strings.EqualFold(strings.TrimSpace(n.cfg.Backend), "desktop")
}

func (n *Notifier) notify(ctx context.Context, note hypr.Notification) error {
	if !n.desktop() {
		return hypr.Notify(ctx, note)
	}

	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	appName := strings.TrimSpace(n.cfg.DesktopAppName)
	if appName == "" {
		appName = "raybot-indicator"
	}
	id, err := desktopNotify(ctx, appName, replaceID, note.Text, note.TimeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

func (n *Notifier) dismiss(ctx context.Context) error {
	if !n.desktop() {
		return hypr.DismissNotify(ctx)
	}

	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()
	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// playCue serializes cue playback on its own goroutine.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	n.sounds.Add(1)
	go func() {
		defer n.sounds.Done()
		n.soundMu.Lock()
		defer n.soundMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := emitCue(ctx, kind); err != nil {
			n.logger.Debug("indicator audio cue failed", "error", err.Error())
		}
	}()
}
