package interview

import "github.com/rbright/raybot/internal/fsm"

// Snapshot is an immutable copy of machine state for status surfaces.
type Snapshot struct {
	SessionID        string      `json:"session_id"`
	State            fsm.State   `json:"state"`
	PreviousState    fsm.State   `json:"previous_state,omitempty"`
	Label            string      `json:"label"`
	InputMode        InputMode   `json:"input_mode"`
	TimeRemaining    int         `json:"time_remaining"`
	TimerStarted     bool        `json:"timer_started"`
	CurrentStep      int         `json:"current_step"`
	FollowupUsed     bool        `json:"followup_used"`
	SelectedQuestion string      `json:"selected_question,omitempty"`
	LastResponse     string      `json:"last_response,omitempty"`
	TranscriptLen    int         `json:"transcript_len"`
	Affordances      Affordances `json:"affordances"`
	Advisory         bool        `json:"advisory"`
	Critical         bool        `json:"critical"`
	PendingClose     bool        `json:"pending_close"`
	CaptionIndex     int         `json:"caption_index"`
	ModalOpen        bool        `json:"modal_open"`
	PaneHeight       int         `json:"pane_height"`
	Error            string      `json:"error,omitempty"`
}

// Snapshot captures the current state.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:     m.sessionID,
		State:         m.state,
		PreviousState: m.previous,
		Label:         m.cfg.Labels[string(m.state)],
		InputMode:     m.mode,
		TimeRemaining: m.timer.Remaining(),
		TimerStarted:  m.timer.Started(),
		CurrentStep:   m.CurrentStep(),
		FollowupUsed:  m.followupUsed,
		LastResponse:  m.lastResponse,
		TranscriptLen: m.log.Len(),
		Affordances:   m.Affordances(),
		Advisory:      m.advisory,
		Critical:      m.critical,
		PendingClose:  m.pendingClose,
		CaptionIndex:  m.cursor.Position(),
		ModalOpen:     m.modalOpen,
		PaneHeight:    m.paneHeight,
		Error:         m.lastError,
	}
	if m.selected != nil {
		s.SelectedQuestion = m.selected.ID
	}
	return s
}
