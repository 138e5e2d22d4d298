package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// overlay is the on-disk shape shared by the JSONC and YAML formats. Every
// field is optional; present fields replace the corresponding default.
type overlay struct {
	Session       *overlaySession    `json:"session" yaml:"session"`
	Timing        *overlayTiming     `json:"timing" yaml:"timing"`
	Captions      *overlayCaptions   `json:"captions" yaml:"captions"`
	Messages      *overlayMessages   `json:"messages" yaml:"messages"`
	Labels        map[string]string  `json:"labels" yaml:"labels"`
	Questions     []Question         `json:"questions" yaml:"questions"`
	QuestionsFile *string            `json:"questions_file" yaml:"questions_file"`
	Input         *overlayInput      `json:"input" yaml:"input"`
	Speech        *overlaySpeech     `json:"speech" yaml:"speech"`
	Indicator     *overlayIndicator  `json:"indicator" yaml:"indicator"`
	ClipboardCmd  *string            `json:"clipboard_cmd" yaml:"clipboard_cmd"`
	HTTP          *overlayHTTP       `json:"http" yaml:"http"`
	Archive       *overlayArchive    `json:"archive" yaml:"archive"`
	Transcript    *overlayTranscript `json:"transcript" yaml:"transcript"`
	Pane          *overlayPane       `json:"pane" yaml:"pane"`
}

type overlaySession struct {
	DurationSeconds      *int `json:"duration_seconds" yaml:"duration_seconds"`
	WarningSeconds       *int `json:"warning_seconds" yaml:"warning_seconds"`
	CriticalSeconds      *int `json:"critical_seconds" yaml:"critical_seconds"`
	ReplayDisableSeconds *int `json:"replay_disable_seconds" yaml:"replay_disable_seconds"`
	EndingNoticeMS       *int `json:"ending_notice_ms" yaml:"ending_notice_ms"`
}

type overlayTiming struct {
	ConnectMS  *int `json:"connect_ms" yaml:"connect_ms"`
	ThinkingMS *int `json:"thinking_ms" yaml:"thinking_ms"`
}

type overlayCaptions struct {
	MaxChars   *int `json:"max_chars" yaml:"max_chars"`
	MSPerChar  *int `json:"ms_per_char" yaml:"ms_per_char"`
	MinChunkMS *int `json:"min_chunk_ms" yaml:"min_chunk_ms"`
}

type overlayMessages struct {
	Introduction *string     `json:"introduction" yaml:"introduction"`
	Closing      *string     `json:"closing" yaml:"closing"`
	Deflection   *string     `json:"deflection" yaml:"deflection"`
	EndingSoon   *string     `json:"ending_soon" yaml:"ending_soon"`
	TimeUp       *string     `json:"time_up" yaml:"time_up"`
	FollowUps    *stringList `json:"followups" yaml:"followups"`
}

type overlayInput struct {
	DefaultMode *string `json:"default_mode" yaml:"default_mode"`
}

type overlaySpeech struct {
	TTSCmd     *string `json:"tts_cmd" yaml:"tts_cmd"`
	CaptureCmd *string `json:"capture_cmd" yaml:"capture_cmd"`
	HealthGRPC *string `json:"health_grpc" yaml:"health_grpc"`
}

type overlayIndicator struct {
	Enable         *bool   `json:"enable" yaml:"enable"`
	Backend        *string `json:"backend" yaml:"backend"`
	DesktopAppName *string `json:"desktop_app_name" yaml:"desktop_app_name"`
	SoundEnable    *bool   `json:"sound_enable" yaml:"sound_enable"`
	TextListening  *string `json:"text_listening" yaml:"text_listening"`
	TextThinking   *string `json:"text_thinking" yaml:"text_thinking"`
	TextSpeaking   *string `json:"text_speaking" yaml:"text_speaking"`
	TextError      *string `json:"text_error" yaml:"text_error"`
	ErrorTimeoutMS *int    `json:"error_timeout_ms" yaml:"error_timeout_ms"`
}

type overlayHTTP struct {
	Enable *bool   `json:"enable" yaml:"enable"`
	Addr   *string `json:"addr" yaml:"addr"`
}

type overlayArchive struct {
	Enable *bool   `json:"enable" yaml:"enable"`
	Path   *string `json:"path" yaml:"path"`
}

type overlayTranscript struct {
	Header              *string `json:"header" yaml:"header"`
	UserName            *string `json:"user_name" yaml:"user_name"`
	AssistantName       *string `json:"assistant_name" yaml:"assistant_name"`
	RecordIntroduction  *bool   `json:"record_introduction" yaml:"record_introduction"`
	CapitalizeSentences *bool   `json:"capitalize_sentences" yaml:"capitalize_sentences"`
}

type overlayPane struct {
	MinHeight     *int `json:"min_height" yaml:"min_height"`
	MaxHeight     *int `json:"max_height" yaml:"max_height"`
	DefaultHeight *int `json:"default_height" yaml:"default_height"`
}

// stringList accepts either a list of strings or a single string. A single
// string is split on "|" so short pools fit on one line.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = splitPipeList(single)
		return nil
	}

	return fmt.Errorf("expected string array or pipe-delimited string")
}

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = list
		return nil
	case yaml.ScalarNode:
		*l = splitPipeList(node.Value)
		return nil
	default:
		return fmt.Errorf("line %d: expected string array or pipe-delimited string", node.Line)
	}
}

func splitPipeList(raw string) []string {
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (o overlay) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if s := o.Session; s != nil {
		setInt(&cfg.Session.DurationSeconds, s.DurationSeconds)
		setInt(&cfg.Session.WarningSeconds, s.WarningSeconds)
		setInt(&cfg.Session.CriticalSeconds, s.CriticalSeconds)
		setInt(&cfg.Session.ReplayDisableSeconds, s.ReplayDisableSeconds)
		setInt(&cfg.Session.EndingNoticeMS, s.EndingNoticeMS)
	}

	if t := o.Timing; t != nil {
		setInt(&cfg.Timing.ConnectMS, t.ConnectMS)
		setInt(&cfg.Timing.ThinkingMS, t.ThinkingMS)
	}

	if c := o.Captions; c != nil {
		setInt(&cfg.Captions.MaxChars, c.MaxChars)
		setInt(&cfg.Captions.MSPerChar, c.MSPerChar)
		setInt(&cfg.Captions.MinChunkMS, c.MinChunkMS)
	}

	if m := o.Messages; m != nil {
		setString(&cfg.Messages.Introduction, m.Introduction)
		setString(&cfg.Messages.Closing, m.Closing)
		setString(&cfg.Messages.Deflection, m.Deflection)
		setString(&cfg.Messages.EndingSoon, m.EndingSoon)
		setString(&cfg.Messages.TimeUp, m.TimeUp)
		if m.FollowUps != nil {
			cfg.Messages.FollowUps = append([]string(nil), (*m.FollowUps)...)
		}
	}

	if o.Labels != nil {
		labels := make(map[string]string, len(cfg.Labels)+len(o.Labels))
		for state, label := range cfg.Labels {
			labels[state] = label
		}
		for state, label := range o.Labels {
			key := strings.ToLower(strings.TrimSpace(state))
			if _, known := cfg.Labels[key]; !known {
				warnings = append(warnings, Warning{Message: fmt.Sprintf("labels.%s does not name an interview state; ignoring", state)})
				continue
			}
			labels[key] = label
		}
		cfg.Labels = labels
	}

	if o.Questions != nil {
		cfg.Questions = trimQuestions(o.Questions)
	}
	if o.QuestionsFile != nil {
		cfg.QuestionsFile = strings.TrimSpace(*o.QuestionsFile)
	}

	if in := o.Input; in != nil && in.DefaultMode != nil {
		cfg.Input.DefaultMode = strings.ToLower(strings.TrimSpace(*in.DefaultMode))
	}

	if sp := o.Speech; sp != nil {
		if sp.TTSCmd != nil {
			cmd, err := commandFrom("speech.tts_cmd", *sp.TTSCmd)
			if err != nil {
				return nil, err
			}
			cfg.Speech.TTS = cmd
		}
		if sp.CaptureCmd != nil {
			cmd, err := commandFrom("speech.capture_cmd", *sp.CaptureCmd)
			if err != nil {
				return nil, err
			}
			cfg.Speech.Capture = cmd
		}
		if sp.HealthGRPC != nil {
			cfg.Speech.HealthGRPC = strings.TrimSpace(*sp.HealthGRPC)
		}
	}

	if ind := o.Indicator; ind != nil {
		setBool(&cfg.Indicator.Enable, ind.Enable)
		if ind.Backend != nil {
			cfg.Indicator.Backend = strings.TrimSpace(*ind.Backend)
		}
		if ind.DesktopAppName != nil {
			cfg.Indicator.DesktopAppName = strings.TrimSpace(*ind.DesktopAppName)
		}
		setBool(&cfg.Indicator.SoundEnable, ind.SoundEnable)
		setString(&cfg.Indicator.TextListening, ind.TextListening)
		setString(&cfg.Indicator.TextThinking, ind.TextThinking)
		setString(&cfg.Indicator.TextSpeaking, ind.TextSpeaking)
		setString(&cfg.Indicator.TextError, ind.TextError)
		setInt(&cfg.Indicator.ErrorTimeoutMS, ind.ErrorTimeoutMS)
	}

	if o.ClipboardCmd != nil {
		cmd, err := commandFrom("clipboard_cmd", *o.ClipboardCmd)
		if err != nil {
			return nil, err
		}
		cfg.Clipboard = cmd
	}

	if h := o.HTTP; h != nil {
		setBool(&cfg.HTTP.Enable, h.Enable)
		if h.Addr != nil {
			cfg.HTTP.Addr = strings.TrimSpace(*h.Addr)
		}
	}

	if a := o.Archive; a != nil {
		setBool(&cfg.Archive.Enable, a.Enable)
		if a.Path != nil {
			cfg.Archive.Path = strings.TrimSpace(*a.Path)
		}
	}

	if tr := o.Transcript; tr != nil {
		setString(&cfg.Transcript.Header, tr.Header)
		setString(&cfg.Transcript.UserName, tr.UserName)
		setString(&cfg.Transcript.AssistantName, tr.AssistantName)
		setBool(&cfg.Transcript.RecordIntroduction, tr.RecordIntroduction)
		setBool(&cfg.Transcript.CapitalizeSentences, tr.CapitalizeSentences)
	}

	if p := o.Pane; p != nil {
		setInt(&cfg.Pane.MinHeight, p.MinHeight)
		setInt(&cfg.Pane.MaxHeight, p.MaxHeight)
		setInt(&cfg.Pane.DefaultHeight, p.DefaultHeight)
	}

	return warnings, nil
}

func commandFrom(key string, raw string) (CommandConfig, error) {
	argv, err := parseArgv(raw)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}

func trimQuestions(in []Question) []Question {
	out := make([]Question, 0, len(in))
	for _, q := range in {
		out = append(out, Question{
			ID:     strings.TrimSpace(q.ID),
			Text:   strings.TrimSpace(q.Text),
			Answer: strings.TrimSpace(q.Answer),
		})
	}
	return out
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
