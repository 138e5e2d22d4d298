package interview

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/eventloop"
	"github.com/rbright/raybot/internal/fsm"
	"github.com/rbright/raybot/internal/responses"
	"github.com/rbright/raybot/internal/transcript"
	"github.com/stretchr/testify/require"
)

const q1Answer = "I rebuilt the release pipeline. It cut lead time to an hour."

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Timing = config.TimingConfig{ConnectMS: 100, ThinkingMS: 100}
	cfg.Captions = config.CaptionsConfig{MaxChars: 80, MSPerChar: 10, MinChunkMS: 100}
	cfg.Session.EndingNoticeMS = 500
	cfg.Messages.Introduction = "Welcome."
	cfg.Messages.Closing = "Thanks for your time."
	cfg.Messages.Deflection = "Let's save that one."
	cfg.Messages.FollowUps = []string{"Here is more detail."}
	cfg.Questions = []config.Question{
		{ID: "q1", Text: "Tell me about a project.", Answer: q1Answer},
		{ID: "q2", Text: "How do you handle conflict?", Answer: "I make the disagreement concrete."},
	}
	return cfg
}

type harness struct {
	t        *testing.T
	clock    *eventloop.Manual
	view     *recordingView
	speaker  *fakeSpeaker
	capturer *fakeCapturer
	archived []Record
	m        *Machine
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		t:        t,
		clock:    eventloop.NewManual(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)),
		view:     &recordingView{},
		speaker:  &fakeSpeaker{},
		capturer: &fakeCapturer{},
	}
	ids := 0
	h.m = New(cfg, h.clock, Deps{
		View:     h.view,
		Speaker:  h.speaker,
		Capturer: h.capturer,
		Provider: responses.NewPool(cfg.Messages.FollowUps, cfg.Messages.Deflection, responses.WithPicker(func(int) int { return 0 })),
		Archiver: ArchiveFunc(func(_ context.Context, rec Record) error {
			h.archived = append(h.archived, rec)
			return nil
		}),
		NewID: func() string {
			ids++
			return fmt.Sprintf("session-%d", ids)
		},
	})
	return h
}

// advanceUntil moves the manual clock in small steps until cond holds.
func (h *harness) advanceUntil(cond func() bool, limit time.Duration) {
	h.t.Helper()
	const step = 10 * time.Millisecond
	for elapsed := time.Duration(0); elapsed <= limit; elapsed += step {
		if cond() {
			return
		}
		h.clock.Advance(step)
	}
	require.True(h.t, cond(), "condition not met within %s (state %s)", limit, h.m.State())
}

func (h *harness) untilState(state fsm.State) {
	h.t.Helper()
	h.advanceUntil(func() bool { return h.m.State() == state }, 30*time.Second)
}

// untilFollowUpWindow waits for ready with a scripted answer heard.
func (h *harness) untilFollowUpWindow() {
	h.t.Helper()
	h.advanceUntil(func() bool {
		return h.m.State() == fsm.StateReady && h.m.CurrentStep() == 3
	}, 30*time.Second)
}

// answerQ1 runs a fresh session through the first scripted answer.
func (h *harness) answerQ1() {
	h.t.Helper()
	require.NoError(h.t, h.m.SelectQuestion("q1"))
	h.untilFollowUpWindow()
}

type recordingView struct {
	writes        int
	states        []fsm.State
	timer         []int
	steps         []int
	mode          InputMode
	affordances   Affordances
	captions      []string
	captionClears int
	transcript    []transcript.Line
	final         []transcript.Line
	finalRenders  int
	notices       []string
	noticeVisible bool
	errors        []string
	modal         bool
	pane          int
}

func (v *recordingView) SetState(state fsm.State, _ string) {
	v.writes++
	if len(v.states) == 0 || v.states[len(v.states)-1] != state {
		v.states = append(v.states, state)
	}
}

func (v *recordingView) SetTimer(remaining int) {
	v.writes++
	v.timer = append(v.timer, remaining)
}

func (v *recordingView) SetStep(step int) {
	v.writes++
	v.steps = append(v.steps, step)
}

func (v *recordingView) SetMode(mode InputMode) {
	v.writes++
	v.mode = mode
}

func (v *recordingView) SetAffordances(a Affordances) {
	v.writes++
	v.affordances = a
}

func (v *recordingView) ShowCaption(text string, _ int, _ int) {
	v.writes++
	v.captions = append(v.captions, text)
}

func (v *recordingView) ClearCaption() {
	v.writes++
	v.captionClears++
}

func (v *recordingView) RenderTranscript(lines []transcript.Line) {
	v.writes++
	v.transcript = lines
}

func (v *recordingView) RenderFinalTranscript(lines []transcript.Line) {
	v.writes++
	v.finalRenders++
	v.final = lines
}

func (v *recordingView) ShowNotice(text string) {
	v.writes++
	v.notices = append(v.notices, text)
	v.noticeVisible = true
}

func (v *recordingView) HideNotice() {
	v.writes++
	v.noticeVisible = false
}

func (v *recordingView) ShowError(message string) {
	v.writes++
	v.errors = append(v.errors, message)
}

func (v *recordingView) SetModal(open bool) {
	v.writes++
	v.modal = open
}

func (v *recordingView) SetPaneHeight(rows int) {
	v.writes++
	v.pane = rows
}

type fakeSpeaker struct {
	texts     []string
	durations []time.Duration
	failOn    string
}

func (s *fakeSpeaker) Speak(_ context.Context, text string, d time.Duration) error {
	if s.failOn != "" && text == s.failOn {
		return errors.New("audio device busy")
	}
	s.texts = append(s.texts, text)
	s.durations = append(s.durations, d)
	return nil
}

type fakeCapturer struct {
	starts   []uint64
	cancels  []uint64
	startErr error
}

func (c *fakeCapturer) Start(_ context.Context, generation uint64) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.starts = append(c.starts, generation)
	return nil
}

func (c *fakeCapturer) Cancel(_ context.Context, generation uint64) error {
	c.cancels = append(c.cancels, generation)
	return nil
}
