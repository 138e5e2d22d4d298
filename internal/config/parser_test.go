package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseJSONCOverlaysDefaults(t *testing.T) {
	cfg, warnings, err := Parse(`{
  // shorter practice session
  "session": {"duration_seconds": 120, "warning_seconds": 30},
  "timing": {"thinking_ms": 400},
  "messages": {"followups": "One more thing. | Another angle."},
  "labels": {"ready": "Go ahead", "bogus": "x"},
  "questions": [
    {"id": "intro", "text": " Who are you? ", "answer": "A builder."},
  ],
  "speech": {"tts_cmd": "espeak-ng -s 160", "health_grpc": "127.0.0.1:50051"},
  "http": {"enable": true, "addr": ":9000"},
}`, Default())
	require.NoError(t, err)

	require.Equal(t, 120, cfg.Session.DurationSeconds)
	require.Equal(t, 30, cfg.Session.WarningSeconds)
	require.Equal(t, 15, cfg.Session.CriticalSeconds)
	require.Equal(t, 400, cfg.Timing.ThinkingMS)
	require.Equal(t, 1500, cfg.Timing.ConnectMS)
	require.Equal(t, []string{"One more thing.", "Another angle."}, cfg.Messages.FollowUps)
	require.Equal(t, "Go ahead", cfg.Labels["ready"])
	require.Equal(t, "Listening…", cfg.Labels["listening"])
	require.NotContains(t, cfg.Labels, "bogus")
	require.Equal(t, []Question{{ID: "intro", Text: "Who are you?", Answer: "A builder."}}, cfg.Questions)
	require.Equal(t, []string{"espeak-ng", "-s", "160"}, cfg.Speech.TTS.Argv)
	require.Equal(t, "127.0.0.1:50051", cfg.Speech.HealthGRPC)
	require.True(t, cfg.HTTP.Enable)
	require.Equal(t, ":9000", cfg.HTTP.Addr)

	require.NotEmpty(t, warnings)
	require.Contains(t, warnings[0].Message, "labels.bogus")
}

func TestParseYAMLUsesSameKeys(t *testing.T) {
	cfg, _, err := Parse(`
session:
  duration_seconds: 90
  critical_seconds: 10
input:
  default_mode: keyboard
messages:
  followups:
    - First.
    - Second.
transcript:
  assistant_name: Interviewer
  record_introduction: true
pane:
  default_height: 20
`, Default())
	require.NoError(t, err)
	require.Equal(t, 90, cfg.Session.DurationSeconds)
	require.Equal(t, 10, cfg.Session.CriticalSeconds)
	require.Equal(t, "keyboard", cfg.Input.DefaultMode)
	require.Equal(t, []string{"First.", "Second."}, cfg.Messages.FollowUps)
	require.Equal(t, "Interviewer", cfg.Transcript.AssistantName)
	require.True(t, cfg.Transcript.RecordIntroduction)
	require.Equal(t, 20, cfg.Pane.DefaultHeight)
}

func TestParseYAMLRejectsUnknownKey(t *testing.T) {
	_, _, err := Parse("sesion:\n  duration_seconds: 10\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "yaml")
	require.Contains(t, err.Error(), "sesion")
}

func TestParseYAMLRejectsMultipleDocuments(t *testing.T) {
	_, _, err := Parse("session:\n  duration_seconds: 10\n---\nsession:\n  duration_seconds: 20\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple YAML documents")
}

func TestParseEmptyContentReturnsBase(t *testing.T) {
	cfg, _, err := Parse("  \n", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseValidationFailureIsReturned(t *testing.T) {
	_, _, err := Parse(`{"pane": {"min_height": 10, "max_height": 5}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "pane.max_height")
}
