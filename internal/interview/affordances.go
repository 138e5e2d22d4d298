package interview

import "github.com/rbright/raybot/internal/fsm"

// InputMode selects how the next follow-up is acquired.
type InputMode string

const (
	ModeVoice    InputMode = "voice"
	ModeKeyboard InputMode = "keyboard"
)

// ParseMode validates a mode name.
func ParseMode(raw string) (InputMode, bool) {
	switch InputMode(raw) {
	case ModeVoice:
		return ModeVoice, true
	case ModeKeyboard:
		return ModeKeyboard, true
	default:
		return "", false
	}
}

// Affordances lists which user actions are currently legal.
type Affordances struct {
	Start     bool `json:"start"`
	Questions bool `json:"questions"`
	Mic       bool `json:"mic"`
	Keyboard  bool `json:"keyboard"`
	Panel     bool `json:"panel"`
	Replay    bool `json:"replay"`
	Export    bool `json:"export"`
	End       bool `json:"end"`
	Reset     bool `json:"reset"`
}

// AffordanceInputs is everything ComputeAffordances looks at.
type AffordanceInputs struct {
	State         fsm.State
	Step          int
	Remaining     int
	Critical      int
	ReplayDisable int
	FollowupUsed  bool
	TimerStarted  bool
	TimerExpired  bool
	Mode          InputMode
	HasResponse   bool
	Replaying     bool
	TranscriptLen int
}

// ComputeAffordances derives enabled actions from machine state alone.
// Direct inputs are only ever enabled in ready; busy states disable them.
func ComputeAffordances(in AffordanceInputs) Affordances {
	ready := in.State == fsm.StateReady
	aboveCritical := in.Remaining > in.Critical
	followUp := ready && in.Step == 3 && aboveCritical && !in.FollowupUsed

	var replay bool
	switch in.State {
	case fsm.StateReady:
		replay = in.HasResponse && in.Remaining > in.ReplayDisable
	case fsm.StateComplete:
		replay = in.HasResponse && !in.Replaying
	}

	var end bool
	switch in.State {
	case fsm.StateConnecting, fsm.StateReady, fsm.StateListening, fsm.StateThinking, fsm.StateSpeaking:
		end = true
	}

	return Affordances{
		Start:     in.State == fsm.StateIdle || in.State == fsm.StateError,
		Questions: in.State == fsm.StateIdle || (ready && aboveCritical),
		Mic:       followUp && in.Mode == ModeVoice,
		Keyboard:  followUp && in.Mode == ModeKeyboard,
		Panel:     ready && in.TimerStarted && !in.TimerExpired && aboveCritical,
		Replay:    replay,
		Export:    in.TranscriptLen > 0,
		End:       end,
		Reset:     in.State == fsm.StateComplete || in.State == fsm.StateError,
	}
}
