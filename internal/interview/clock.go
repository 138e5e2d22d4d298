package interview

import (
	"time"

	"github.com/rbright/raybot/internal/fsm"
)

func (m *Machine) onTick(remaining int) {
	m.view.SetTimer(remaining)
	m.refresh()
}

// onWarning only raises the advisory flag; gating stays on the critical threshold.
func (m *Machine) onWarning(remaining int) {
	m.advisory = true
	m.logger.Info("session warning threshold", "session_id", m.sessionID, "remaining", remaining)
}

// onCritical disables direct inputs in the same tick and shows the
// ending-soon notice for a fixed duration. A voice capture still open is
// cancelled without consuming the follow-up.
func (m *Machine) onCritical(remaining int) {
	m.critical = true
	m.logger.Info("session critical threshold", "session_id", m.sessionID, "remaining", remaining)
	m.indicator.CueEndingSoon(m.ctx)
	m.showNotice(m.cfg.Messages.EndingSoon, m.ms(m.cfg.Session.EndingNoticeMS))
	if m.state == fsm.StateListening {
		m.cancelCapture()
		m.TransitionTo(fsm.StateReady, Payload{})
		return
	}
	m.refresh()
}

func (m *Machine) onExpire() {
	m.logger.Info("session time exhausted", "session_id", m.sessionID, "state", string(m.state))
	m.view.ShowNotice(m.cfg.Messages.TimeUp)
	m.requestClose("timer")
}

// requestClose is the single entry point for both close producers, the
// countdown and the user. Ready closes immediately. Busy states latch
// pendingClose, which is honored when speaking completes or ready is next
// entered, so no utterance is cut short.
func (m *Machine) requestClose(source string) {
	m.logger.Info("close requested", "session_id", m.sessionID, "source", source, "state", string(m.state))

	switch m.state {
	case fsm.StateReady:
		m.TransitionTo(fsm.StateClosing, Payload{})
	case fsm.StateListening:
		m.pendingClose = true
		m.cancelCapture()
		m.TransitionTo(fsm.StateReady, Payload{})
	case fsm.StateConnecting, fsm.StateThinking, fsm.StateSpeaking, fsm.StateError:
		m.pendingClose = true
		m.refresh()
	}
}

func (m *Machine) showNotice(text string, d time.Duration) {
	if m.notice != nil {
		m.notice.Stop()
	}
	m.view.ShowNotice(text)
	m.notice = m.sched.After(d, func() {
		m.notice = nil
		m.view.HideNotice()
	})
}
