package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	clipboard := "wl-copy --trim-newline"

	return Config{
		Session: SessionConfig{
			DurationSeconds:      300,
			WarningSeconds:       60,
			CriticalSeconds:      15,
			ReplayDisableSeconds: 30,
			EndingNoticeMS:       4000,
		},
		Timing: TimingConfig{
			ConnectMS:  1500,
			ThinkingMS: 1200,
		},
		Captions: CaptionsConfig{
			MaxChars:   80,
			MSPerChar:  55,
			MinChunkMS: 1200,
		},
		Messages: MessagesConfig{
			Introduction: "Hi, I'm Raybot. Pick a question and I'll answer it the way Ray would. You'll get one follow-up after each answer.",
			Closing:      "That's our time. Thanks for the conversation, your transcript is ready below.",
			Deflection:   "Good question. That one is better answered live, so let's save it for a real conversation.",
			EndingSoon:   "Session ending soon",
			TimeUp:       "Time's up",
			FollowUps: []string{
				"Happy to go deeper. The short version is that I start with the constraint nobody has written down, then make it explicit for the whole team.",
				"Sure. What mattered most there was keeping the feedback loop short, so we could change course within a day instead of a quarter.",
				"The detail I'd add is that I measure the outcome before and after, otherwise it's just a story.",
			},
		},
		Labels:    DefaultLabels(),
		Questions: DefaultQuestions(),
		Input:     InputConfig{DefaultMode: "voice"},
		Speech:    SpeechConfig{},
		Indicator: IndicatorConfig{
			Enable:         true,
			Backend:        "hypr",
			DesktopAppName: "raybot-indicator",
			SoundEnable:    true,
			TextListening:  "Listening…",
			TextThinking:   "Thinking…",
			TextSpeaking:   "Speaking…",
			TextError:      "Interview error",
			ErrorTimeoutMS: 1600,
		},
		Clipboard: CommandConfig{Raw: clipboard, Argv: mustParseArgv(clipboard)},
		HTTP:      HTTPConfig{Enable: false, Addr: "127.0.0.1:8765"},
		Archive:   ArchiveConfig{Enable: true},
		Transcript: TranscriptConfig{
			Header:              "Raybot interview transcript",
			UserName:            "You",
			AssistantName:       "Raybot",
			RecordIntroduction:  false,
			CapitalizeSentences: true,
		},
		Pane: PaneConfig{MinHeight: 4, MaxHeight: 40, DefaultHeight: 12},
	}
}

// DefaultLabels maps every interview state to its display label.
func DefaultLabels() map[string]string {
	return map[string]string{
		"idle":       "Ready when you are",
		"connecting": "Connecting…",
		"ready":      "Your turn",
		"listening":  "Listening…",
		"thinking":   "Thinking…",
		"speaking":   "Speaking…",
		"closing":    "Wrapping up…",
		"complete":   "Interview complete",
		"error":      "Something went wrong",
	}
}

// DefaultQuestions is the built-in scripted question set.
func DefaultQuestions() []Question {
	return []Question{
		{
			ID:     "q1",
			Text:   "Tell me about a project you're proud of.",
			Answer: "I rebuilt our release pipeline so a change could reach production in under an hour. The hard part wasn't the tooling, it was getting four teams to agree on one definition of done.",
		},
		{
			ID:     "q2",
			Text:   "How do you handle disagreement on a team?",
			Answer: "I try to make the disagreement concrete. We write down what each option costs, pick a date to revisit, and commit fully until then.",
		},
		{
			ID:     "q3",
			Text:   "What are you looking for in your next role?",
			Answer: "A team that ships often and talks to its users. I do my best work when the distance between a decision and its feedback is short.",
		},
	}
}
