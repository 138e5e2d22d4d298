package indicator

import "github.com/rbright/raybot/internal/config"

type messages struct {
	listening string
	thinking  string
	speaking  string
	errorText string
}

func defaultMessages() messages {
	return messages{
		listening: "Listening…",
		thinking:  "Thinking…",
		speaking:  "Speaking…",
		errorText: "Interview error",
	}
}

// messagesFor prefers configured texts and falls back per field.
func messagesFor(cfg config.IndicatorConfig) messages {
	m := defaultMessages()
	pick := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	pick(&m.listening, cfg.TextListening)
	pick(&m.thinking, cfg.TextThinking)
	pick(&m.speaking, cfg.TextSpeaking)
	pick(&m.errorText, cfg.TextError)
	return m
}
