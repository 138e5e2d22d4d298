package interview

import (
	"context"
	"time"

	"github.com/rbright/raybot/internal/fsm"
	"github.com/rbright/raybot/internal/transcript"
)

// View is the set of named slots the machine writes to. Implementations
// that lack a slot embed NopView and leave that method alone.
type View interface {
	SetState(state fsm.State, label string)
	SetTimer(remaining int)
	SetStep(step int)
	SetMode(mode InputMode)
	SetAffordances(a Affordances)
	ShowCaption(text string, index int, total int)
	ClearCaption()
	RenderTranscript(lines []transcript.Line)
	RenderFinalTranscript(lines []transcript.Line)
	ShowNotice(text string)
	HideNotice()
	ShowError(message string)
	SetModal(open bool)
	SetPaneHeight(rows int)
}

// NopView ignores every slot write.
type NopView struct{}

func (NopView) SetState(fsm.State, string)              {}
func (NopView) SetTimer(int)                            {}
func (NopView) SetStep(int)                             {}
func (NopView) SetMode(InputMode)                       {}
func (NopView) SetAffordances(Affordances)              {}
func (NopView) ShowCaption(string, int, int)            {}
func (NopView) ClearCaption()                           {}
func (NopView) RenderTranscript([]transcript.Line)      {}
func (NopView) RenderFinalTranscript([]transcript.Line) {}
func (NopView) ShowNotice(string)                       {}
func (NopView) HideNotice()                             {}
func (NopView) ShowError(string)                        {}
func (NopView) SetModal(bool)                           {}
func (NopView) SetPaneHeight(int)                       {}

// MultiView fans every slot write out to several views in order.
type MultiView []View

func (mv MultiView) SetState(state fsm.State, label string) {
	for _, v := range mv {
		v.SetState(state, label)
	}
}

func (mv MultiView) SetTimer(remaining int) {
	for _, v := range mv {
		v.SetTimer(remaining)
	}
}

func (mv MultiView) SetStep(step int) {
	for _, v := range mv {
		v.SetStep(step)
	}
}

func (mv MultiView) SetMode(mode InputMode) {
	for _, v := range mv {
		v.SetMode(mode)
	}
}

func (mv MultiView) SetAffordances(a Affordances) {
	for _, v := range mv {
		v.SetAffordances(a)
	}
}

func (mv MultiView) ShowCaption(text string, index int, total int) {
	for _, v := range mv {
		v.ShowCaption(text, index, total)
	}
}

func (mv MultiView) ClearCaption() {
	for _, v := range mv {
		v.ClearCaption()
	}
}

func (mv MultiView) RenderTranscript(lines []transcript.Line) {
	for _, v := range mv {
		v.RenderTranscript(lines)
	}
}

func (mv MultiView) RenderFinalTranscript(lines []transcript.Line) {
	for _, v := range mv {
		v.RenderFinalTranscript(lines)
	}
}

func (mv MultiView) ShowNotice(text string) {
	for _, v := range mv {
		v.ShowNotice(text)
	}
}

func (mv MultiView) HideNotice() {
	for _, v := range mv {
		v.HideNotice()
	}
}

func (mv MultiView) ShowError(message string) {
	for _, v := range mv {
		v.ShowError(message)
	}
}

func (mv MultiView) SetModal(open bool) {
	for _, v := range mv {
		v.SetModal(open)
	}
}

func (mv MultiView) SetPaneHeight(rows int) {
	for _, v := range mv {
		v.SetPaneHeight(rows)
	}
}

// Speaker plays text aloud. Speak must return promptly: playback runs in
// the background and the machine paces completion from the caption plan.
type Speaker interface {
	Speak(ctx context.Context, text string, duration time.Duration) error
}

// SpeakFunc adapts a function to Speaker.
type SpeakFunc func(ctx context.Context, text string, duration time.Duration) error

func (f SpeakFunc) Speak(ctx context.Context, text string, duration time.Duration) error {
	return f(ctx, text, duration)
}

// CaptureResult is one finished capture. Generation identifies the
// listening session that produced it; results from older generations are
// dropped.
type CaptureResult struct {
	Generation uint64
	Text       string
	Err        error
}

// Capturer acquires one spoken utterance. Results are delivered back to the
// machine through Machine.DeliverCapture on the machine's goroutine.
type Capturer interface {
	Start(ctx context.Context, generation uint64) error
	Cancel(ctx context.Context, generation uint64) error
}

// Indicator mirrors machine activity on desktop surfaces.
type Indicator interface {
	ShowListening(context.Context)
	ShowThinking(context.Context)
	ShowSpeaking(context.Context)
	ShowError(context.Context, string)
	CueStart(context.Context)
	CueEndingSoon(context.Context)
	CueComplete(context.Context)
	Hide(context.Context)
}

// Record is a finished session handed to the Archiver.
type Record struct {
	SessionID string
	StartedAt time.Time
	EndedAt   time.Time
	Entries   []transcript.Entry
	Export    string
}

// Archiver persists completed sessions.
type Archiver interface {
	Archive(ctx context.Context, rec Record) error
}

// ArchiveFunc adapts a function to Archiver.
type ArchiveFunc func(ctx context.Context, rec Record) error

func (f ArchiveFunc) Archive(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

type noopSpeaker struct{}

func (noopSpeaker) Speak(context.Context, string, time.Duration) error { return nil }

type noopCapturer struct{}

func (noopCapturer) Start(context.Context, uint64) error  { return nil }
func (noopCapturer) Cancel(context.Context, uint64) error { return nil }

type noopIndicator struct{}

func (noopIndicator) ShowListening(context.Context)     {}
func (noopIndicator) ShowThinking(context.Context)      {}
func (noopIndicator) ShowSpeaking(context.Context)      {}
func (noopIndicator) ShowError(context.Context, string) {}
func (noopIndicator) CueStart(context.Context)          {}
func (noopIndicator) CueEndingSoon(context.Context)     {}
func (noopIndicator) CueComplete(context.Context)       {}
func (noopIndicator) Hide(context.Context)              {}
