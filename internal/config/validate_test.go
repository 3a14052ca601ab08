package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaultWarnsAboutDivisor(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "[-1, 1]")

	cfg := Default()
	cfg.Normalize.Divisor = 32768
	warnings, err = Validate(cfg)
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateEngineDumpWarnsForNonGoogleEngine(t *testing.T) {
	cfg := Default()
	cfg.Normalize.Divisor = 32768
	cfg.Debug.EnableEngineDump = true

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "engine_dump")
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "unknown audio backend", mutate: func(c *Config) { c.Audio.Backend = "alsa" }, wantErr: "audio.backend"},
		{name: "wav without path", mutate: func(c *Config) { c.Audio.Backend = AudioWAV }, wantErr: "audio.wav_path"},
		{name: "zero window", mutate: func(c *Config) { c.Window.Chunks = 0 }, wantErr: "window.chunks"},
		{name: "zero divisor", mutate: func(c *Config) { c.Normalize.Divisor = 0 }, wantErr: "normalize.divisor"},
		{name: "negative divisor", mutate: func(c *Config) { c.Normalize.Divisor = -1 }, wantErr: "normalize.divisor"},
		{name: "unknown engine", mutate: func(c *Config) { c.Engine.Backend = "vosk" }, wantErr: "engine.backend"},
		{name: "http without url", mutate: func(c *Config) { c.Engine.ServerURL = "" }, wantErr: "engine.server_url"},
		{name: "cpp without model", mutate: func(c *Config) { c.Engine.Backend = EngineWhisperCPP }, wantErr: "engine.model_path"},
		{name: "google insecure without endpoint", mutate: func(c *Config) {
			c.Engine.Backend = EngineGoogle
			c.Engine.Google.Insecure = true
		}, wantErr: "engine.google.endpoint"},
		{name: "negative timeout", mutate: func(c *Config) { c.Engine.TimeoutMS = -1 }, wantErr: "engine.timeout_ms"},
		{name: "metrics without addr", mutate: func(c *Config) {
			c.Metrics.Enable = true
			c.Metrics.Addr = ""
		}, wantErr: "metrics.addr"},
		{name: "publish without brokers", mutate: func(c *Config) { c.Publish.Enable = true }, wantErr: "publish.brokers"},
		{name: "publish without topic", mutate: func(c *Config) {
			c.Publish.Enable = true
			c.Publish.Brokers = []string{"localhost:9092"}
			c.Publish.TopicFinal = ""
		}, wantErr: "publish.topic_partial"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "verbose" }, wantErr: "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
