package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			Backend:  AudioPulse,
			Input:    "default",
			Fallback: "default",
			Realtime: true,
		},
		Window: WindowConfig{Chunks: 6},
		// 255 reproduces the long-standing behaviour; Validate warns about it.
		Normalize: NormalizeConfig{Divisor: 255},
		Engine: EngineConfig{
			Backend:   EngineWhisperHTTP,
			ServerURL: "http://127.0.0.1:8080",
			Language:  "en",
		},
		Transcript: TranscriptConfig{Pad: true},
		Metrics:    MetricsConfig{Addr: "127.0.0.1:9464"},
		Publish: PublishConfig{
			TopicPartial: "scribe.transcripts.partial",
			TopicFinal:   "scribe.transcripts.final",
		},
		Log: LogConfig{Level: "info"},
	}
}
