// Package doctor runs runtime readiness diagnostics for config, audio, engine, and publishing.
package doctor

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/config"
	"github.com/rbright/scribe/internal/engine/google"
	"github.com/rbright/scribe/internal/engine/whispercpp"
	"github.com/rbright/scribe/internal/engine/whisperhttp"
	"github.com/rbright/scribe/internal/pcm"
	"github.com/rbright/scribe/internal/publish"
)

const probeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(ctx context.Context, cfg config.Loaded) Report {
	checks := []Check{checkConfig(cfg)}

	checks = append(checks, checkEnv("XDG_RUNTIME_DIR", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "runtime dir available for the control socket", "XDG_RUNTIME_DIR is empty; status and stop are unavailable"))

	checks = append(checks, checkAudio(ctx, cfg.Config.Audio))
	checks = append(checks, checkEngine(ctx, cfg.Config.Engine))
	checks = append(checks, checkDivisor(cfg.Config.Normalize.Divisor))

	if cfg.Config.Publish.Enable {
		checks = append(checks, checkKafka(ctx, cfg.Config.Publish.Brokers))
	}

	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	return Check{Name: "config", Pass: true, Message: cfg.Source()}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkAudio validates the configured capture backend.
func checkAudio(ctx context.Context, cfg config.AudioConfig) Check {
	switch cfg.Backend {
	case config.AudioPulse:
		return checkAudioSelection(ctx, cfg)
	case config.AudioWAV:
		return checkWAVFile(cfg.WAVPath)
	default:
		if slices.Contains(audio.Backends(), cfg.Backend) {
			return Check{Name: "audio.backend", Pass: true, Message: fmt.Sprintf("%s backend compiled in", cfg.Backend)}
		}
		return Check{Name: "audio.backend", Pass: false, Message: fmt.Sprintf("%s backend not compiled in (rebuild with -tags %s)", cfg.Backend, cfg.Backend)}
	}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.AudioConfig) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkWAVFile opens the replay file to validate its format.
func checkWAVFile(path string) Check {
	src, err := audio.OpenWAV(path, false)
	if err != nil {
		return Check{Name: "audio.wav", Pass: false, Message: err.Error()}
	}
	_ = src.Close()
	return Check{Name: "audio.wav", Pass: true, Message: fmt.Sprintf("%q is 16 kHz mono 16-bit PCM", path)}
}

// checkEngine validates that the configured engine can be reached or loaded.
func checkEngine(ctx context.Context, cfg config.EngineConfig) Check {
	switch cfg.Backend {
	case config.EngineWhisperHTTP:
		return checkWhisperServer(ctx, cfg.ServerURL)
	case config.EngineWhisperCPP:
		return checkWhisperModel(cfg.ModelPath, whispercpp.Compiled)
	case config.EngineGoogle:
		return checkGoogleCredentials(cfg.Google)
	default:
		return Check{Name: "engine", Pass: false, Message: fmt.Sprintf("unknown engine backend %q", cfg.Backend)}
	}
}

// checkWhisperServer probes the whisper-server base URL.
func checkWhisperServer(ctx context.Context, serverURL string) Check {
	eng, err := whisperhttp.New(whisperhttp.Config{ServerURL: serverURL})
	if err != nil {
		return Check{Name: "engine.whisper-http", Pass: false, Message: err.Error()}
	}
	defer eng.Close()

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := eng.Probe(probeCtx); err != nil {
		return Check{Name: "engine.whisper-http", Pass: false, Message: err.Error()}
	}
	return Check{Name: "engine.whisper-http", Pass: true, Message: fmt.Sprintf("reachable at %s", serverURL)}
}

// checkWhisperModel validates the native backend is compiled in and the model exists.
func checkWhisperModel(modelPath string, compiled bool) Check {
	if !compiled {
		return Check{Name: "engine.whisper-cpp", Pass: false, Message: "not compiled in (rebuild with -tags whispercpp)"}
	}
	info, err := os.Stat(modelPath)
	if err != nil {
		return Check{Name: "engine.whisper-cpp", Pass: false, Message: fmt.Sprintf("model file: %v", err)}
	}
	if info.IsDir() {
		return Check{Name: "engine.whisper-cpp", Pass: false, Message: fmt.Sprintf("model path %q is a directory", modelPath)}
	}
	return Check{Name: "engine.whisper-cpp", Pass: true, Message: fmt.Sprintf("model %q (%d bytes)", modelPath, info.Size())}
}

// checkGoogleCredentials validates credentials for the hosted endpoint.
func checkGoogleCredentials(cfg config.GoogleConfig) Check {
	if cfg.Insecure {
		return Check{Name: "engine.google", Pass: true, Message: fmt.Sprintf("insecure endpoint %s; credentials not required", cfg.Endpoint)}
	}
	path := strings.TrimSpace(os.Getenv(google.CredentialsEnv))
	if path == "" {
		return Check{Name: "engine.google", Pass: false, Message: google.CredentialsEnv + " is empty"}
	}
	if _, err := os.Stat(path); err != nil {
		return Check{Name: "engine.google", Pass: false, Message: fmt.Sprintf("credentials file: %v", err)}
	}
	return Check{Name: "engine.google", Pass: true, Message: fmt.Sprintf("credentials at %s", path)}
}

// checkDivisor fails when normalized 16-bit samples can leave [-1, 1].
func checkDivisor(divisor float64) Check {
	if divisor < pcm.FullScale {
		return Check{Name: "normalize.divisor", Pass: false, Message: fmt.Sprintf(
			"divisor %g maps 16-bit samples up to ±%.1f; use %g for the engine's [-1, 1] range",
			divisor, float64(pcm.FullScale)/divisor, pcm.FullScale,
		)}
	}
	return Check{Name: "normalize.divisor", Pass: true, Message: fmt.Sprintf("divisor %g keeps samples within [-1, 1]", divisor)}
}

// checkKafka dials every configured broker.
func checkKafka(ctx context.Context, brokers []string) Check {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := publish.Probe(probeCtx, brokers); err != nil {
		return Check{Name: "publish.kafka", Pass: false, Message: err.Error()}
	}
	return Check{Name: "publish.kafka", Pass: true, Message: fmt.Sprintf("reachable: %s", strings.Join(brokers, ", "))}
}
