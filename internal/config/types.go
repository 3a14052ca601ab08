// Package config resolves, parses, validates, and defaults scribe configuration.
package config

// Audio backends.
const (
	AudioPulse     = "pulse"
	AudioPortAudio = "portaudio"
	AudioMalgo     = "malgo"
	AudioWAV       = "wav"
)

// Engine backends.
const (
	EngineWhisperHTTP = "whisper-http"
	EngineWhisperCPP  = "whisper-cpp"
	EngineGoogle      = "google"
)

// Config is the fully materialized runtime configuration used by scribe.
type Config struct {
	Audio      AudioConfig
	Window     WindowConfig
	Normalize  NormalizeConfig
	Engine     EngineConfig
	Transcript TranscriptConfig
	Metrics    MetricsConfig
	Publish    PublishConfig
	Log        LogConfig
	Debug      DebugConfig
}

// AudioConfig selects the capture backend and, for pulse, the input device.
type AudioConfig struct {
	Backend  string
	Input    string
	Fallback string
	WAVPath  string
	Realtime bool
}

// WindowConfig sizes the transcription context window in one-second chunks.
type WindowConfig struct {
	Chunks int
}

// NormalizeConfig controls int16 to float conversion.
type NormalizeConfig struct {
	Divisor float64
}

// EngineConfig selects and configures the speech-to-text engine.
type EngineConfig struct {
	Backend   string
	ServerURL string
	ModelPath string
	Model     string
	Language  string
	TimeoutMS int
	Google    GoogleConfig
}

// GoogleConfig holds Cloud Speech connection overrides.
type GoogleConfig struct {
	Endpoint string
	Insecure bool
}

// TranscriptConfig controls transcript assembly and display.
type TranscriptConfig struct {
	StripNoise bool
	Pad        bool
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enable bool
	Addr   string
}

// PublishConfig controls the Kafka transcript sink.
type PublishConfig struct {
	Enable       bool
	Brokers      []string
	TopicPartial string
	TopicFinal   string
	Principal    string
}

// LogConfig controls the JSONL log level.
type LogConfig struct {
	Level string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	EnableAudioDump  bool
	EnableEngineDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
