package interview

import (
	"fmt"
	"strings"

	"github.com/rbright/raybot/internal/config"
	"github.com/rbright/raybot/internal/fsm"
	"github.com/rbright/raybot/internal/transcript"
)

// Start begins the session from idle. From error it behaves like Retry.
func (m *Machine) Start() error {
	switch m.state {
	case fsm.StateIdle:
		m.TransitionTo(fsm.StateConnecting, Payload{})
		return nil
	case fsm.StateError:
		return m.Retry()
	default:
		return fmt.Errorf("start from %s: %w", m.state, ErrTurnNotAllowed)
	}
}

// Retry reconnects after a failure. The introduction is not repeated.
func (m *Machine) Retry() error {
	if m.state != fsm.StateError {
		return fmt.Errorf("retry from %s: %w", m.state, ErrTurnNotAllowed)
	}
	m.TransitionTo(fsm.StateConnecting, Payload{})
	return nil
}

// Reset abandons a finished or failed session and starts a fresh one in idle.
func (m *Machine) Reset() error {
	if m.state != fsm.StateComplete && m.state != fsm.StateError {
		return fmt.Errorf("reset from %s: %w", m.state, ErrTurnNotAllowed)
	}
	previous := m.sessionID
	if !m.TransitionTo(fsm.StateIdle, Payload{}) {
		return fmt.Errorf("reset from %s: %w", m.state, ErrTurnNotAllowed)
	}
	m.newSession()
	m.logger.Info("session reset", "previous_session_id", previous, "session_id", m.sessionID)
	return nil
}

// SelectQuestion chooses a scripted question. In idle the choice is stored
// and the session starts; it is asked once the introduction finishes. In
// ready the question is asked immediately.
func (m *Machine) SelectQuestion(id string) error {
	q, ok := m.questions[strings.TrimSpace(id)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, id)
	}

	switch m.state {
	case fsm.StateIdle:
		m.selected = &q
		m.TransitionTo(fsm.StateConnecting, Payload{})
		return nil
	case fsm.StateReady:
		if m.timer.Remaining() <= m.cfg.Session.CriticalSeconds {
			return fmt.Errorf("select %s with %ds left: %w", q.ID, m.timer.Remaining(), ErrTurnNotAllowed)
		}
		m.beginScripted(q)
		return nil
	default:
		return fmt.Errorf("select %s from %s: %w", q.ID, m.state, ErrTurnNotAllowed)
	}
}

// beginScripted records the question before requesting thinking so the
// transcript holds the prompt even if the answer never arrives.
func (m *Machine) beginScripted(q config.Question) {
	m.appendEntry(transcript.RoleUser, q.Text)
	m.TransitionTo(fsm.StateThinking, Payload{Turn: TurnScripted, Question: q})
}

// followUpOpen is the shared gate for voice and keyboard follow-ups.
func (m *Machine) followUpOpen() bool {
	return m.state == fsm.StateReady &&
		m.CurrentStep() == 3 &&
		m.timer.Remaining() > m.cfg.Session.CriticalSeconds &&
		!m.followupUsed
}

// SubmitFollowUp submits the session's single follow-up from the keyboard.
func (m *Machine) SubmitFollowUp(text string) error {
	if m.mode != ModeKeyboard {
		return fmt.Errorf("keyboard follow-up in %s mode: %w", m.mode, ErrModeUnavailable)
	}
	if !m.followUpOpen() {
		return ErrFollowupUnavailable
	}
	return m.beginFollowUp(text)
}

func (m *Machine) beginFollowUp(text string) error {
	text = m.normalize(text)
	if text == "" {
		return ErrEmptyUtterance
	}
	m.followupUsed = true
	m.appendEntry(transcript.RoleUser, text)
	m.TransitionTo(fsm.StateThinking, Payload{Turn: TurnFollowUp, Prompt: text})
	return nil
}

// StartListening opens a voice capture for the follow-up.
func (m *Machine) StartListening() error {
	if m.mode != ModeVoice {
		return fmt.Errorf("listen in %s mode: %w", m.mode, ErrModeUnavailable)
	}
	if !m.followUpOpen() {
		return ErrFollowupUnavailable
	}
	m.TransitionTo(fsm.StateListening, Payload{})
	return nil
}

// CaptureResult delivers finished text for the capture in progress.
func (m *Machine) CaptureResult(text string) error {
	return m.DeliverCapture(CaptureResult{Generation: m.captureGen, Text: text})
}

// CaptureFailed reports a capture failure for the capture in progress.
func (m *Machine) CaptureFailed(err error) error {
	return m.DeliverCapture(CaptureResult{Generation: m.captureGen, Err: err})
}

// DeliverCapture consumes a capture result. Results for a cancelled or
// superseded capture are ignored. Blank text returns to ready with the
// follow-up still available.
func (m *Machine) DeliverCapture(res CaptureResult) error {
	if m.state != fsm.StateListening || res.Generation != m.captureGen {
		m.logger.Debug("stale capture ignored",
			"session_id", m.sessionID,
			"generation", res.Generation,
			"current", m.captureGen,
			"state", string(m.state),
		)
		return fmt.Errorf("capture result in %s: %w", m.state, ErrTurnNotAllowed)
	}

	if res.Err != nil {
		m.fail("Speech capture failed", res.Err)
		return res.Err
	}

	text := m.normalize(res.Text)
	if text == "" {
		m.captureGen++
		m.TransitionTo(fsm.StateReady, Payload{})
		return ErrEmptyUtterance
	}

	m.captureGen++
	m.followupUsed = true
	m.appendEntry(transcript.RoleUser, text)
	m.TransitionTo(fsm.StateThinking, Payload{Turn: TurnFollowUp, Prompt: text})
	return nil
}

func (m *Machine) cancelCapture() {
	gen := m.captureGen
	m.captureGen++
	if err := m.capturer.Cancel(m.ctx, gen); err != nil {
		m.logger.Warn("cancel capture failed", "session_id", m.sessionID, "error", err.Error())
	}
}

// panelOpen gates free-text panel questions. It ignores followupUsed.
func (m *Machine) panelOpen() bool {
	return m.state == fsm.StateReady &&
		m.timer.Started() &&
		!m.timer.Expired() &&
		m.timer.Remaining() > m.cfg.Session.CriticalSeconds
}

// SubmitPanel asks a free-text question that receives a deflection.
func (m *Machine) SubmitPanel(text string) error {
	if !m.panelOpen() {
		return ErrPanelUnavailable
	}
	text = m.normalize(text)
	if text == "" {
		return ErrEmptyUtterance
	}
	m.appendEntry(transcript.RoleUser, text)
	m.TransitionTo(fsm.StateThinking, Payload{Turn: TurnPanel, Prompt: text})
	return nil
}

// SwitchMode changes the input mode. Switching away from an active voice
// capture cancels it and returns to ready.
func (m *Machine) SwitchMode(raw string) error {
	mode, ok := ParseMode(strings.ToLower(strings.TrimSpace(raw)))
	if !ok {
		return fmt.Errorf("%w: %q", ErrModeUnavailable, raw)
	}
	if mode == m.mode {
		return nil
	}

	m.mode = mode
	m.logger.Info("input mode switched", "session_id", m.sessionID, "mode", string(mode))
	if m.state == fsm.StateListening {
		m.cancelCapture()
		m.TransitionTo(fsm.StateReady, Payload{})
		return nil
	}
	m.refresh()
	return nil
}

// Replay speaks the last response again without adding to the transcript.
func (m *Machine) Replay() error {
	if m.lastResponse == "" {
		return ErrReplayUnavailable
	}

	switch m.state {
	case fsm.StateReady:
		if m.timer.Remaining() <= m.cfg.Session.ReplayDisableSeconds {
			return fmt.Errorf("%w: %ds left", ErrReplayUnavailable, m.timer.Remaining())
		}
		m.TransitionTo(fsm.StateSpeaking, Payload{Text: m.lastResponse, Utterance: UtterReplay})
		return nil
	case fsm.StateComplete:
		if m.replaying {
			return ErrReplayUnavailable
		}
		m.replaying = true
		err := m.utter(m.lastResponse, func() {
			m.replaying = false
			m.refresh()
		})
		if err != nil {
			m.replaying = false
			m.logger.Warn("replay playback failed", "session_id", m.sessionID, "error", err.Error())
			return err
		}
		m.refresh()
		return nil
	default:
		return fmt.Errorf("replay from %s: %w", m.state, ErrReplayUnavailable)
	}
}

// EndSession asks the session to close. It never interrupts an utterance.
func (m *Machine) EndSession() error {
	switch m.state {
	case fsm.StateIdle, fsm.StateComplete:
		return fmt.Errorf("end from %s: %w", m.state, ErrTurnNotAllowed)
	case fsm.StateClosing:
		return nil
	}
	m.requestClose("user")
	return nil
}

func (m *Machine) normalize(text string) string {
	return transcript.Normalize(text, transcript.NormalizeOptions{
		CapitalizeSentences: m.cfg.Transcript.CapitalizeSentences,
	})
}
