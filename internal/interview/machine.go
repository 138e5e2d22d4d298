// Package interview runs one voice-first interview session: the guarded
// state machine, its enter-hooks, the turn orchestrator, and the countdown
// that can force the session to close.
//
// A Machine is not goroutine-safe. Every method must run on the goroutine
// that owns its Scheduler; Runtime provides that confinement for servers.
package interview

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/raybot/internal/captions"
	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/countdown"
	"github.com/rbright/raybot/internal/eventloop"
	"github.com/rbright/raybot/internal/fsm"
	"github.com/rbright/raybot/internal/responses"
	"github.com/rbright/raybot/internal/transcript"
)

// Deps are the machine's collaborators. Nil fields fall back to no-ops.
type Deps struct {
	Logger    *slog.Logger
	View      View
	Speaker   Speaker
	Capturer  Capturer
	Provider  responses.Provider
	Indicator Indicator
	Archiver  Archiver
	NewID     func() string
}

// TurnKind identifies what produced a thinking/speaking cycle.
type TurnKind int

const (
	TurnNone TurnKind = iota
	TurnScripted
	TurnFollowUp
	TurnPanel
)

// Utterance identifies what is being spoken.
type Utterance int

const (
	UtterNone Utterance = iota
	UtterIntroduction
	UtterAnswer
	UtterFollowUp
	UtterDeflection
	UtterReplay
	UtterClosing
)

// Payload is the data carried by a transition request.
type Payload struct {
	Turn          TurnKind
	Question      config.Question
	Prompt        string
	Text          string
	Utterance     Utterance
	SpeakSelected bool
}

// Machine owns the state of one interview page region.
type Machine struct {
	cfg       config.Config
	sched     eventloop.Scheduler
	logger    *slog.Logger
	view      View
	speaker   Speaker
	capturer  Capturer
	provider  responses.Provider
	indicator Indicator
	archiver  Archiver
	newID     func() string

	ctx       context.Context
	pacing    captions.Pacing
	names     transcript.Names
	questions map[string]config.Question

	sessionID    string
	startedAt    time.Time
	state        fsm.State
	previous     fsm.State
	mode         InputMode
	timer        *countdown.Timer
	log          *transcript.Log
	selected     *config.Question
	lastResponse string
	lastError    string

	followupUsed bool
	answered     bool
	introduced   bool
	advisory     bool
	critical     bool
	pendingClose bool
	replaying    bool
	modalOpen    bool
	paneHeight   int

	activeTurn  TurnKind
	utterGen    uint64
	captureGen  uint64
	cursor      *captions.Cursor
	deferred    map[uint64]eventloop.Timer
	deferredSeq uint64
	notice      eventloop.Timer
}

// New constructs a machine in idle with a fresh session.
func New(cfg config.Config, sched eventloop.Scheduler, deps Deps) *Machine {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.View == nil {
		deps.View = NopView{}
	}
	if deps.Speaker == nil {
		deps.Speaker = noopSpeaker{}
	}
	if deps.Capturer == nil {
		deps.Capturer = noopCapturer{}
	}
	if deps.Provider == nil {
		deps.Provider = responses.NewPool(cfg.Messages.FollowUps, cfg.Messages.Deflection)
	}
	if deps.Indicator == nil {
		deps.Indicator = noopIndicator{}
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	questions := make(map[string]config.Question, len(cfg.Questions))
	for _, q := range cfg.Questions {
		questions[q.ID] = q
	}

	m := &Machine{
		cfg:       cfg,
		sched:     sched,
		logger:    deps.Logger,
		view:      deps.View,
		speaker:   deps.Speaker,
		capturer:  deps.Capturer,
		provider:  deps.Provider,
		indicator: deps.Indicator,
		archiver:  deps.Archiver,
		newID:     deps.NewID,
		ctx:       context.Background(),
		pacing: captions.Pacing{
			MaxChars: cfg.Captions.MaxChars,
			PerChar:  time.Duration(cfg.Captions.MSPerChar) * time.Millisecond,
			MinChunk: time.Duration(cfg.Captions.MinChunkMS) * time.Millisecond,
		},
		names: transcript.Names{
			User:      cfg.Transcript.UserName,
			Assistant: cfg.Transcript.AssistantName,
		},
		questions:  questions,
		paneHeight: cfg.Pane.DefaultHeight,
	}
	m.newSession()
	return m
}

// Bind sets the context passed to collaborators. Cancelling it aborts
// in-progress playback and capture commands.
func (m *Machine) Bind(ctx context.Context) {
	if ctx != nil {
		m.ctx = ctx
	}
}

// newSession discards all per-session state and renders the idle view.
func (m *Machine) newSession() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.stopDeferred()
	if m.notice != nil {
		m.notice.Stop()
		m.notice = nil
	}

	m.sessionID = m.newID()
	m.startedAt = m.sched.Now()
	m.state = fsm.StateIdle
	m.previous = ""
	m.mode = InputMode(m.cfg.Input.DefaultMode)
	if _, ok := ParseMode(string(m.mode)); !ok {
		m.mode = ModeVoice
	}
	m.log = &transcript.Log{}
	m.selected = nil
	m.lastResponse = ""
	m.lastError = ""
	m.followupUsed = false
	m.answered = false
	m.introduced = false
	m.advisory = false
	m.critical = false
	m.pendingClose = false
	m.replaying = false
	m.activeTurn = TurnNone
	m.captureGen++
	m.utterGen++
	m.cursor = nil

	m.timer = countdown.New(m.sched, m.cfg.Session.DurationSeconds,
		countdown.WithTick(m.onTick),
		countdown.WithWarning(m.cfg.Session.WarningSeconds, m.onWarning),
		countdown.WithCritical(m.cfg.Session.CriticalSeconds, m.onCritical),
		countdown.WithExpiry(m.onExpire),
	)

	m.view.ClearCaption()
	m.view.HideNotice()
	m.view.SetTimer(m.timer.Remaining())
	m.view.RenderTranscript(nil)
	m.view.SetPaneHeight(m.paneHeight)
	m.refresh()
}

// State returns the current machine state.
func (m *Machine) State() fsm.State {
	return m.state
}

// PreviousState returns the state before the last accepted transition.
func (m *Machine) PreviousState() fsm.State {
	return m.previous
}

// SessionID identifies the current session.
func (m *Machine) SessionID() string {
	return m.sessionID
}

// Mode returns the active input mode.
func (m *Machine) Mode() InputMode {
	return m.mode
}

// FollowupUsed reports whether the session's single follow-up was submitted.
func (m *Machine) FollowupUsed() bool {
	return m.followupUsed
}

// Remaining returns the seconds left in the session budget.
func (m *Machine) Remaining() int {
	return m.timer.Remaining()
}

// LastResponse returns the most recently spoken text.
func (m *Machine) LastResponse() string {
	return m.lastResponse
}

// Entries returns a copy of the transcript.
func (m *Machine) Entries() []transcript.Entry {
	return m.log.Entries()
}

// ExportText formats the transcript for clipboard or download.
func (m *Machine) ExportText() string {
	return transcript.Export(m.cfg.Transcript.Header, m.log.Entries(), m.names)
}

// CurrentStep is the coarse stage indicator: 2 while a scripted turn is in
// flight, 3 once a scripted answer has been heard, otherwise 1.
func (m *Machine) CurrentStep() int {
	if m.activeTurn == TurnScripted && (m.state == fsm.StateThinking || m.state == fsm.StateSpeaking) {
		return 2
	}
	if m.answered {
		return 3
	}
	return 1
}

// Affordances computes the currently legal user actions.
func (m *Machine) Affordances() Affordances {
	return ComputeAffordances(AffordanceInputs{
		State:         m.state,
		Step:          m.CurrentStep(),
		Remaining:     m.timer.Remaining(),
		Critical:      m.cfg.Session.CriticalSeconds,
		ReplayDisable: m.cfg.Session.ReplayDisableSeconds,
		FollowupUsed:  m.followupUsed,
		TimerStarted:  m.timer.Started(),
		TimerExpired:  m.timer.Expired(),
		Mode:          m.mode,
		HasResponse:   m.lastResponse != "",
		Replaying:     m.replaying,
		TranscriptLen: m.log.Len(),
	})
}

// TransitionTo moves the machine to target when the transition table allows
// it, then runs the target's enter-hook and refreshes the view. Rejected
// requests change nothing and write nothing.
func (m *Machine) TransitionTo(target fsm.State, p Payload) bool {
	next, err := fsm.Transition(m.state, target)
	if err != nil {
		m.logger.Debug("transition rejected",
			"session_id", m.sessionID,
			"from", string(m.state),
			"to", string(target),
			"error", err.Error(),
		)
		return false
	}

	m.previous = m.state
	m.state = next
	m.logger.Info("state transition",
		"session_id", m.sessionID,
		"from", string(m.previous),
		"to", string(next),
		"remaining", m.timer.Remaining(),
	)

	m.enter(next, p)
	m.refresh()
	return true
}

func (m *Machine) enter(state fsm.State, p Payload) {
	switch state {
	case fsm.StateConnecting:
		m.enterConnecting()
	case fsm.StateReady:
		m.enterReady(p)
	case fsm.StateListening:
		m.enterListening()
	case fsm.StateThinking:
		m.enterThinking(p)
	case fsm.StateSpeaking:
		m.enterSpeaking(p)
	case fsm.StateClosing:
		m.enterClosing()
	case fsm.StateComplete:
		m.enterComplete()
	case fsm.StateError:
		m.enterError()
	}
}

func (m *Machine) enterConnecting() {
	m.lastError = ""
	m.indicator.CueStart(m.ctx)
	m.after(m.ms(m.cfg.Timing.ConnectMS), func() {
		if m.state != fsm.StateConnecting {
			return
		}
		if m.introduced {
			m.TransitionTo(fsm.StateReady, Payload{})
			return
		}

		m.indicator.ShowSpeaking(m.ctx)
		intro := m.cfg.Messages.Introduction
		err := m.utter(intro, func() {
			m.introduced = true
			if m.cfg.Transcript.RecordIntroduction {
				m.appendEntry(transcript.RoleAssistant, intro)
			}
			m.lastResponse = intro
			m.TransitionTo(fsm.StateReady, Payload{SpeakSelected: true})
		})
		if err != nil {
			m.fail("Unable to play the introduction", err)
			return
		}
		m.timer.Start()
	})
}

func (m *Machine) enterReady(p Payload) {
	m.activeTurn = TurnNone
	m.indicator.Hide(m.ctx)
	if !m.timer.Started() {
		m.timer.Start()
	}

	if m.pendingClose {
		m.TransitionTo(fsm.StateClosing, Payload{})
		return
	}

	if p.SpeakSelected && m.selected != nil {
		q := *m.selected
		m.selected = nil
		m.beginScripted(q)
	}
}

func (m *Machine) enterListening() {
	m.indicator.ShowListening(m.ctx)
	m.captureGen++
	if err := m.capturer.Start(m.ctx, m.captureGen); err != nil {
		m.fail("Unable to start listening", err)
	}
}

func (m *Machine) enterThinking(p Payload) {
	m.activeTurn = p.Turn
	m.indicator.ShowThinking(m.ctx)
	m.after(m.ms(m.cfg.Timing.ThinkingMS), func() {
		if m.state != fsm.StateThinking {
			return
		}
		text, utterance, err := m.respond(p)
		if err != nil {
			m.fail("Unable to prepare a response", err)
			return
		}
		m.TransitionTo(fsm.StateSpeaking, Payload{Turn: p.Turn, Text: text, Utterance: utterance})
	})
}

// respond resolves the reply for a turn.
func (m *Machine) respond(p Payload) (string, Utterance, error) {
	switch p.Turn {
	case TurnScripted:
		return p.Question.Answer, UtterAnswer, nil
	case TurnFollowUp:
		text, err := m.provider.FollowUp(m.ctx, p.Prompt)
		return text, UtterFollowUp, err
	case TurnPanel:
		text, err := m.provider.Deflect(m.ctx, p.Prompt)
		return text, UtterDeflection, err
	default:
		return p.Text, p.Utterance, nil
	}
}

func (m *Machine) enterSpeaking(p Payload) {
	if p.Turn != TurnNone {
		m.activeTurn = p.Turn
	}
	m.indicator.ShowSpeaking(m.ctx)
	err := m.utter(p.Text, func() { m.finishSpeaking(p) })
	if err != nil {
		m.fail("Speech playback failed", err)
	}
}

// finishSpeaking runs when an utterance in the speaking state has been
// fully displayed. It is the only place a deferred close is honored while
// speaking.
func (m *Machine) finishSpeaking(p Payload) {
	if p.Utterance != UtterReplay {
		m.appendEntry(transcript.RoleAssistant, p.Text)
		m.lastResponse = p.Text
	}
	if p.Utterance == UtterAnswer {
		m.answered = true
	}

	if m.pendingClose || m.timer.Expired() {
		m.TransitionTo(fsm.StateClosing, Payload{})
		return
	}
	m.TransitionTo(fsm.StateReady, Payload{})
}

func (m *Machine) enterClosing() {
	m.pendingClose = false
	m.activeTurn = TurnNone
	m.indicator.ShowSpeaking(m.ctx)
	closing := m.cfg.Messages.Closing
	done := func() {
		m.appendEntry(transcript.RoleAssistant, closing)
		m.lastResponse = closing
		m.TransitionTo(fsm.StateComplete, Payload{})
	}
	if err := m.utter(closing, done); err != nil {
		// closing can only exit to complete, so the message is still paced
		// through captions without audio.
		m.logger.Warn("closing playback failed", "session_id", m.sessionID, "error", err.Error())
		m.utterSilently(closing, done)
	}
}

func (m *Machine) enterComplete() {
	m.timer.Stop()
	m.activeTurn = TurnNone
	lines := transcript.Render(m.log.Entries(), m.names)
	m.view.RenderFinalTranscript(lines)
	m.indicator.CueComplete(m.ctx)
	m.indicator.Hide(m.ctx)

	if m.archiver != nil {
		rec := Record{
			SessionID: m.sessionID,
			StartedAt: m.startedAt,
			EndedAt:   m.sched.Now(),
			Entries:   m.log.Entries(),
			Export:    m.ExportText(),
		}
		if err := m.archiver.Archive(m.ctx, rec); err != nil {
			m.logger.Error("archive transcript failed", "session_id", m.sessionID, "error", err.Error())
		}
	}

	m.logger.Info("session complete",
		"session_id", m.sessionID,
		"entries", m.log.Len(),
		"followup_used", m.followupUsed,
	)
}

func (m *Machine) enterError() {
	m.activeTurn = TurnNone
	m.view.ShowError(m.lastError)
	m.indicator.ShowError(m.ctx, m.lastError)
}

// fail stops in-flight latency callbacks and moves to error. It is used for
// capture and playback failures, never for rejected transitions.
func (m *Machine) fail(message string, err error) {
	m.logger.Error("interview failure",
		"session_id", m.sessionID,
		"state", string(m.state),
		"message", message,
		"error", err.Error(),
	)
	m.stopDeferred()
	m.utterGen++
	m.cursor = nil
	m.view.ClearCaption()
	if m.state == fsm.StateListening {
		m.cancelCapture()
	}
	m.lastError = message
	m.TransitionTo(fsm.StateError, Payload{})
}

// refresh rewrites the derived view slots.
func (m *Machine) refresh() {
	m.view.SetState(m.state, m.cfg.Labels[string(m.state)])
	m.view.SetStep(m.CurrentStep())
	m.view.SetMode(m.mode)
	m.view.SetAffordances(m.Affordances())
}

func (m *Machine) appendEntry(role transcript.Role, content string) {
	if _, err := m.log.Append(role, content, m.sched.Now()); err != nil {
		m.logger.Error("transcript append failed", "session_id", m.sessionID, "error", err.Error())
		return
	}
	m.view.RenderTranscript(transcript.Render(m.log.Entries(), m.names))
}

// after schedules fn on the machine's scheduler and tracks the timer until
// it fires so a failure or reset can cancel it.
func (m *Machine) after(d time.Duration, fn func()) {
	if m.deferred == nil {
		m.deferred = make(map[uint64]eventloop.Timer)
	}
	m.deferredSeq++
	id := m.deferredSeq
	m.deferred[id] = m.sched.After(d, func() {
		delete(m.deferred, id)
		fn()
	})
}

func (m *Machine) stopDeferred() {
	for _, t := range m.deferred {
		t.Stop()
	}
	clear(m.deferred)
}

func (m *Machine) ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
