// Package config resolves, parses, validates, and defaults raybot configuration.
package config

// Config is the fully materialized, immutable runtime configuration handed
// to the interview machine and its collaborators.
type Config struct {
	Session       SessionConfig
	Timing        TimingConfig
	Captions      CaptionsConfig
	Messages      MessagesConfig
	Labels        map[string]string
	Questions     []Question
	QuestionsFile string
	Input         InputConfig
	Speech        SpeechConfig
	Indicator     IndicatorConfig
	Clipboard     CommandConfig
	HTTP          HTTPConfig
	Archive       ArchiveConfig
	Transcript    TranscriptConfig
	Pane          PaneConfig
}

// SessionConfig is the time budget and its thresholds, in seconds.
type SessionConfig struct {
	DurationSeconds      int
	WarningSeconds       int
	CriticalSeconds      int
	ReplayDisableSeconds int
	EndingNoticeMS       int
}

// TimingConfig holds the simulated latencies of the connect and thinking phases.
type TimingConfig struct {
	ConnectMS  int
	ThinkingMS int
}

// CaptionsConfig controls caption chunking and pacing.
type CaptionsConfig struct {
	MaxChars   int
	MSPerChar  int
	MinChunkMS int
}

// MessagesConfig holds the fixed lines the interviewer speaks.
type MessagesConfig struct {
	Introduction string
	Closing      string
	Deflection   string
	EndingSoon   string
	TimeUp       string
	FollowUps    []string
}

// Question is one scripted question with its prepared answer.
type Question struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Answer string `json:"answer" yaml:"answer"`
}

// InputConfig controls the initial input mode.
type InputConfig struct {
	DefaultMode string
}

// SpeechConfig wires the external playback and capture services.
type SpeechConfig struct {
	TTS        CommandConfig
	Capture    CommandConfig
	HealthGRPC string
}

// IndicatorConfig controls visual indicator and audio cue behavior.
type IndicatorConfig struct {
	Enable         bool
	Backend        string
	DesktopAppName string
	SoundEnable    bool
	TextListening  string
	TextThinking   string
	TextSpeaking   string
	TextError      string
	ErrorTimeoutMS int
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// HTTPConfig controls the optional browser-facing surface.
type HTTPConfig struct {
	Enable bool
	Addr   string
}

// ArchiveConfig controls the completed-transcript archive.
type ArchiveConfig struct {
	Enable bool
	Path   string
}

// TranscriptConfig controls transcript naming, export and normalization.
type TranscriptConfig struct {
	Header              string
	UserName            string
	AssistantName       string
	RecordIntroduction  bool
	CapitalizeSentences bool
}

// PaneConfig bounds the transcript pane height, in rows.
type PaneConfig struct {
	MinHeight     int
	MaxHeight     int
	DefaultHeight int
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
