package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	s := cfg.Session
	if s.DurationSeconds <= 0 {
		return nil, fmt.Errorf("session.duration_seconds must be > 0")
	}
	if s.WarningSeconds < 0 {
		return nil, fmt.Errorf("session.warning_seconds must be >= 0")
	}
	if s.CriticalSeconds < 0 {
		return nil, fmt.Errorf("session.critical_seconds must be >= 0")
	}
	if s.ReplayDisableSeconds < 0 {
		return nil, fmt.Errorf("session.replay_disable_seconds must be >= 0")
	}
	if s.EndingNoticeMS < 0 {
		return nil, fmt.Errorf("session.ending_notice_ms must be >= 0")
	}
	if s.WarningSeconds >= s.DurationSeconds {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("session.warning_seconds=%d is not below the session duration; the warning will never fire", s.WarningSeconds)})
	}
	if s.CriticalSeconds >= s.DurationSeconds {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("session.critical_seconds=%d is not below the session duration; the critical threshold will never fire", s.CriticalSeconds)})
	}
	if s.CriticalSeconds > s.WarningSeconds {
		warnings = append(warnings, Warning{Message: "session.critical_seconds is above session.warning_seconds; the critical threshold will fire first"})
	}

	if cfg.Timing.ConnectMS < 0 {
		return nil, fmt.Errorf("timing.connect_ms must be >= 0")
	}
	if cfg.Timing.ThinkingMS < 0 {
		return nil, fmt.Errorf("timing.thinking_ms must be >= 0")
	}

	if cfg.Captions.MaxChars <= 0 {
		return nil, fmt.Errorf("captions.max_chars must be > 0")
	}
	if cfg.Captions.MSPerChar <= 0 {
		return nil, fmt.Errorf("captions.ms_per_char must be > 0")
	}
	if cfg.Captions.MinChunkMS < 0 {
		return nil, fmt.Errorf("captions.min_chunk_ms must be >= 0")
	}

	if strings.TrimSpace(cfg.Messages.Introduction) == "" {
		return nil, fmt.Errorf("messages.introduction must not be empty")
	}
	if strings.TrimSpace(cfg.Messages.Closing) == "" {
		return nil, fmt.Errorf("messages.closing must not be empty")
	}
	if strings.TrimSpace(cfg.Messages.Deflection) == "" {
		return nil, fmt.Errorf("messages.deflection must not be empty")
	}
	if len(cfg.Messages.FollowUps) == 0 {
		return nil, fmt.Errorf("messages.followups must contain at least one response")
	}

	if err := validateQuestions(cfg.Questions); err != nil {
		return nil, err
	}

	switch cfg.Input.DefaultMode {
	case "voice", "keyboard":
	default:
		return nil, fmt.Errorf("input.default_mode must be one of: voice, keyboard")
	}
	if cfg.Input.DefaultMode == "voice" && len(cfg.Speech.Capture.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "speech.capture_cmd is unset; voice follow-ups must be pushed with `raybot utter`"})
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Indicator.Backend))
	if backend == "" {
		return nil, fmt.Errorf("indicator.backend must not be empty")
	}
	if backend != "hypr" && backend != "desktop" {
		return nil, fmt.Errorf("indicator.backend must be one of: hypr, desktop")
	}
	if backend == "desktop" && strings.TrimSpace(cfg.Indicator.DesktopAppName) == "" {
		return nil, fmt.Errorf("indicator.desktop_app_name must not be empty when indicator.backend=desktop")
	}
	if cfg.Indicator.ErrorTimeoutMS < 0 {
		return nil, fmt.Errorf("indicator.error_timeout_ms must be >= 0")
	}
	if len(cfg.Clipboard.Argv) == 0 {
		return nil, fmt.Errorf("clipboard_cmd must not be empty")
	}

	if cfg.HTTP.Enable && strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return nil, fmt.Errorf("http.addr must not be empty when http.enable=true")
	}

	if strings.TrimSpace(cfg.Transcript.UserName) == "" || strings.TrimSpace(cfg.Transcript.AssistantName) == "" {
		return nil, fmt.Errorf("transcript.user_name and transcript.assistant_name must not be empty")
	}

	p := cfg.Pane
	if p.MinHeight <= 0 {
		return nil, fmt.Errorf("pane.min_height must be > 0")
	}
	if p.MaxHeight < p.MinHeight {
		return nil, fmt.Errorf("pane.max_height must be >= pane.min_height")
	}
	if p.DefaultHeight < p.MinHeight || p.DefaultHeight > p.MaxHeight {
		return nil, fmt.Errorf("pane.default_height must be within [pane.min_height, pane.max_height]")
	}

	for state, label := range cfg.Labels {
		if strings.TrimSpace(label) == "" {
			warnings = append(warnings, Warning{Message: fmt.Sprintf("labels.%s is empty", state)})
		}
	}

	return warnings, nil
}

func validateQuestions(questions []Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("questions must contain at least one scripted question")
	}
	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		if q.ID == "" {
			return fmt.Errorf("questions[%d].id must not be empty", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("questions contains duplicate id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Text == "" {
			return fmt.Errorf("questions[%d].text must not be empty", i)
		}
		if q.Answer == "" {
			return fmt.Errorf("questions[%d].answer must not be empty", i)
		}
	}
	return nil
}
