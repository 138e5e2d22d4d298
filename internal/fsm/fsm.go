// Package fsm defines the interview states and the legal transitions between them.
package fsm

import "fmt"

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateReady      State = "ready"
	StateListening  State = "listening"
	StateThinking   State = "thinking"
	StateSpeaking   State = "speaking"
	StateClosing    State = "closing"
	StateComplete   State = "complete"
	StateError      State = "error"
)

// States lists every machine state in declaration order.
var States = []State{
	StateIdle,
	StateConnecting,
	StateReady,
	StateListening,
	StateThinking,
	StateSpeaking,
	StateClosing,
	StateComplete,
	StateError,
}

var table = map[State][]State{
	StateIdle:       {StateConnecting, StateError},
	StateConnecting: {StateReady, StateError},
	StateReady:      {StateListening, StateThinking, StateSpeaking, StateClosing, StateError},
	StateListening:  {StateThinking, StateReady, StateError},
	StateThinking:   {StateSpeaking, StateError},
	StateSpeaking:   {StateReady, StateClosing, StateError},
	StateClosing:    {StateComplete},
	StateComplete:   {StateIdle},
	StateError:      {StateIdle, StateConnecting},
}

// Allowed returns a copy of the destination set for current.
func Allowed(current State) []State {
	dests, ok := table[current]
	if !ok {
		return nil
	}
	out := make([]State, len(dests))
	copy(out, dests)
	return out
}

// CanTransition reports whether target is a legal destination from current.
func CanTransition(current, target State) bool {
	for _, dest := range table[current] {
		if dest == target {
			return true
		}
	}
	return false
}

// Transition validates current -> target and returns the resulting state.
// On failure the current state is returned unchanged.
func Transition(current, target State) (State, error) {
	if _, ok := table[current]; !ok {
		return current, fmt.Errorf("unknown state %q", current)
	}
	if !CanTransition(current, target) {
		return current, invalidTransition(current, target)
	}
	return target, nil
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := table[s]
	return ok
}

// Busy reports whether s is a transitional state that blocks user input.
func (s State) Busy() bool {
	switch s {
	case StateConnecting, StateListening, StateThinking, StateSpeaking, StateClosing:
		return true
	default:
		return false
	}
}

func invalidTransition(from, to State) error {
	return fmt.Errorf("invalid transition: %s --> %s", from, to)
}
