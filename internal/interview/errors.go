package interview

import "errors"

var (
	// ErrUnknownQuestion indicates a question id outside the configured set.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrTurnNotAllowed indicates the current state cannot start the requested turn.
	ErrTurnNotAllowed = errors.New("turn not allowed in current state")
	// ErrFollowupUnavailable indicates the one-shot follow-up gate is closed.
	ErrFollowupUnavailable = errors.New("follow-up unavailable")
	// ErrPanelUnavailable indicates the free-text panel is closed.
	ErrPanelUnavailable = errors.New("panel question unavailable")
	// ErrEmptyUtterance indicates submitted or captured text was blank.
	ErrEmptyUtterance = errors.New("utterance is empty")
	// ErrReplayUnavailable indicates there is nothing to replay or too little time left.
	ErrReplayUnavailable = errors.New("replay unavailable")
	// ErrModeUnavailable indicates an unknown input mode or a path that needs the other mode.
	ErrModeUnavailable = errors.New("input mode unavailable")
)
