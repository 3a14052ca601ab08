package config

import (
	"fmt"
	"slices"
	"strings"
)

// fullScale is the divisor that maps every int16 sample into [-1, 1).
const fullScale = 32768

var (
	audioBackends  = []string{AudioPulse, AudioPortAudio, AudioMalgo, AudioWAV}
	engineBackends = []string{EngineWhisperHTTP, EngineWhisperCPP, EngineGoogle}
	logLevels      = []string{"debug", "info", "warn", "error"}
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if !slices.Contains(audioBackends, cfg.Audio.Backend) {
		return nil, fmt.Errorf("audio.backend must be one of: %s", strings.Join(audioBackends, ", "))
	}
	if cfg.Audio.Backend == AudioWAV && cfg.Audio.WAVPath == "" {
		return nil, fmt.Errorf("audio.wav_path must not be empty when audio.backend=wav")
	}
	if cfg.Window.Chunks <= 0 {
		return nil, fmt.Errorf("window.chunks must be > 0")
	}

	if cfg.Normalize.Divisor <= 0 {
		return nil, fmt.Errorf("normalize.divisor must be > 0")
	}
	if cfg.Normalize.Divisor < fullScale {
		warnings = append(warnings, Warning{Message: fmt.Sprintf(
			"normalize.divisor=%g lets 16-bit samples exceed the engine's [-1, 1] input range; %d is full scale",
			cfg.Normalize.Divisor, fullScale,
		)})
	}

	if !slices.Contains(engineBackends, cfg.Engine.Backend) {
		return nil, fmt.Errorf("engine.backend must be one of: %s", strings.Join(engineBackends, ", "))
	}
	switch cfg.Engine.Backend {
	case EngineWhisperHTTP:
		if cfg.Engine.ServerURL == "" {
			return nil, fmt.Errorf("engine.server_url must not be empty when engine.backend=%s", EngineWhisperHTTP)
		}
	case EngineWhisperCPP:
		if cfg.Engine.ModelPath == "" {
			return nil, fmt.Errorf("engine.model_path must not be empty when engine.backend=%s", EngineWhisperCPP)
		}
	case EngineGoogle:
		if cfg.Engine.Google.Insecure && cfg.Engine.Google.Endpoint == "" {
			return nil, fmt.Errorf("engine.google.endpoint must be set when engine.google.insecure=true")
		}
	}
	if cfg.Engine.TimeoutMS < 0 {
		return nil, fmt.Errorf("engine.timeout_ms must be >= 0")
	}

	if cfg.Metrics.Enable && cfg.Metrics.Addr == "" {
		return nil, fmt.Errorf("metrics.addr must not be empty when metrics.enable=true")
	}

	if cfg.Publish.Enable {
		if len(cfg.Publish.Brokers) == 0 {
			return nil, fmt.Errorf("publish.brokers must not be empty when publish.enable=true")
		}
		if cfg.Publish.TopicPartial == "" || cfg.Publish.TopicFinal == "" {
			return nil, fmt.Errorf("publish.topic_partial and publish.topic_final must not be empty when publish.enable=true")
		}
	}

	if !slices.Contains(logLevels, strings.ToLower(cfg.Log.Level)) {
		return nil, fmt.Errorf("log.level must be one of: %s", strings.Join(logLevels, ", "))
	}

	if cfg.Debug.EnableEngineDump && cfg.Engine.Backend != EngineGoogle {
		warnings = append(warnings, Warning{Message: "debug.engine_dump only applies to engine.backend=google"})
	}

	return warnings, nil
}
