package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEmptyContentReturnsBase(t *testing.T) {
	cfg, warnings, err := Parse("  \n", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "normalize.divisor=255")
}

func TestParseYAMLConfig(t *testing.T) {
	input := `
# scribe on the workstation
audio:
  backend: wav
  wav_path: /tmp/meeting.wav
  realtime: false
window:
  chunks: 4
normalize:
  divisor: 32768
engine:
  backend: whisper-cpp
  model_path: /models/ggml-small.bin
  timeout_ms: 15000
transcript:
  strip_noise: true
  pad: false
publish:
  enable: true
  brokers: [kafka-1:9092, kafka-2:9092]
  principal: desk
log:
  level: debug
debug:
  audio_dump: true
`

	cfg, warnings, err := Parse(input, Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	require.Equal(t, AudioConfig{Backend: AudioWAV, Input: "default", Fallback: "default", WAVPath: "/tmp/meeting.wav"}, cfg.Audio)
	require.Equal(t, 4, cfg.Window.Chunks)
	require.Equal(t, 32768.0, cfg.Normalize.Divisor)
	require.Equal(t, EngineWhisperCPP, cfg.Engine.Backend)
	require.Equal(t, "/models/ggml-small.bin", cfg.Engine.ModelPath)
	require.Equal(t, 15000, cfg.Engine.TimeoutMS)
	require.Equal(t, "en", cfg.Engine.Language)
	require.Equal(t, TranscriptConfig{StripNoise: true}, cfg.Transcript)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Publish.Brokers)
	require.Equal(t, "scribe.transcripts.partial", cfg.Publish.TopicPartial)
	require.Equal(t, "desk", cfg.Publish.Principal)
	require.Equal(t, "debug", cfg.Log.Level)
	require.True(t, cfg.Debug.EnableAudioDump)
}

func TestParseYAMLBrokersCommaString(t *testing.T) {
	cfg, _, err := Parse("publish:\n  brokers: \"a:9092, b:9092\"\n", Default())
	require.NoError(t, err)
	require.Equal(t, []string{"a:9092", "b:9092"}, cfg.Publish.Brokers)
}

func TestParseYAMLUnknownKeyFails(t *testing.T) {
	_, _, err := Parse("window:\n  size: 4\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
	require.Contains(t, err.Error(), "not found")
}

func TestParseYAMLCommentOnlyReturnsBase(t *testing.T) {
	cfg, _, err := Parse("# nothing configured yet\n", Default())
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestParseYAMLRejectsMultipleDocuments(t *testing.T) {
	_, _, err := Parse("window:\n  chunks: 4\n---\nwindow:\n  chunks: 5\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "multiple documents")
}

func TestParseYAMLTypeError(t *testing.T) {
	_, _, err := Parse("window:\n  chunks: six\n", Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "yaml")
}

func TestParseValidationErrorsPropagate(t *testing.T) {
	_, _, err := Parse(`{"engine":{"backend":"vosk"}}`, Default())
	require.Error(t, err)
	require.Contains(t, err.Error(), "engine.backend")
}
