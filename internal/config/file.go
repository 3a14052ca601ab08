package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk schema. Pointer fields distinguish "unset" from
// zero values so only present keys override the base config.
type fileConfig struct {
	Audio      *fileAudio      `json:"audio" yaml:"audio"`
	Window     *fileWindow     `json:"window" yaml:"window"`
	Normalize  *fileNormalize  `json:"normalize" yaml:"normalize"`
	Engine     *fileEngine     `json:"engine" yaml:"engine"`
	Transcript *fileTranscript `json:"transcript" yaml:"transcript"`
	Metrics    *fileMetrics    `json:"metrics" yaml:"metrics"`
	Publish    *filePublish    `json:"publish" yaml:"publish"`
	Log        *fileLog        `json:"log" yaml:"log"`
	Debug      *fileDebug      `json:"debug" yaml:"debug"`
}

type fileAudio struct {
	Backend  *string `json:"backend" yaml:"backend"`
	Input    *string `json:"input" yaml:"input"`
	Fallback *string `json:"fallback" yaml:"fallback"`
	WAVPath  *string `json:"wav_path" yaml:"wav_path"`
	Realtime *bool   `json:"realtime" yaml:"realtime"`
}

type fileWindow struct {
	Chunks *int `json:"chunks" yaml:"chunks"`
}

type fileNormalize struct {
	Divisor *float64 `json:"divisor" yaml:"divisor"`
}

type fileEngine struct {
	Backend   *string     `json:"backend" yaml:"backend"`
	ServerURL *string     `json:"server_url" yaml:"server_url"`
	ModelPath *string     `json:"model_path" yaml:"model_path"`
	Model     *string     `json:"model" yaml:"model"`
	Language  *string     `json:"language" yaml:"language"`
	TimeoutMS *int        `json:"timeout_ms" yaml:"timeout_ms"`
	Google    *fileGoogle `json:"google" yaml:"google"`
}

type fileGoogle struct {
	Endpoint *string `json:"endpoint" yaml:"endpoint"`
	Insecure *bool   `json:"insecure" yaml:"insecure"`
}

type fileTranscript struct {
	StripNoise *bool `json:"strip_noise" yaml:"strip_noise"`
	Pad        *bool `json:"pad" yaml:"pad"`
}

type fileMetrics struct {
	Enable *bool   `json:"enable" yaml:"enable"`
	Addr   *string `json:"addr" yaml:"addr"`
}

type filePublish struct {
	Enable       *bool       `json:"enable" yaml:"enable"`
	Brokers      *stringList `json:"brokers" yaml:"brokers"`
	TopicPartial *string     `json:"topic_partial" yaml:"topic_partial"`
	TopicFinal   *string     `json:"topic_final" yaml:"topic_final"`
	Principal    *string     `json:"principal" yaml:"principal"`
}

type fileLog struct {
	Level *string `json:"level" yaml:"level"`
}

type fileDebug struct {
	AudioDump  *bool `json:"audio_dump" yaml:"audio_dump"`
	EngineDump *bool `json:"engine_dump" yaml:"engine_dump"`
}

// stringList accepts either a list or a comma-delimited string.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = compact(list)
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = compact(strings.Split(single, ","))
		return nil
	}
	return fmt.Errorf("expected string array or comma-delimited string")
}

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*l = compact(list)
		return nil
	case yaml.ScalarNode:
		*l = compact(strings.Split(node.Value, ","))
		return nil
	default:
		return fmt.Errorf("line %d: expected string list or comma-delimited string", node.Line)
	}
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (payload fileConfig) applyTo(cfg *Config) {
	if a := payload.Audio; a != nil {
		setString(&cfg.Audio.Backend, a.Backend)
		setString(&cfg.Audio.Input, a.Input)
		setString(&cfg.Audio.Fallback, a.Fallback)
		setString(&cfg.Audio.WAVPath, a.WAVPath)
		set(&cfg.Audio.Realtime, a.Realtime)
	}
	if w := payload.Window; w != nil {
		set(&cfg.Window.Chunks, w.Chunks)
	}
	if n := payload.Normalize; n != nil {
		set(&cfg.Normalize.Divisor, n.Divisor)
	}
	if e := payload.Engine; e != nil {
		setString(&cfg.Engine.Backend, e.Backend)
		setString(&cfg.Engine.ServerURL, e.ServerURL)
		setString(&cfg.Engine.ModelPath, e.ModelPath)
		setString(&cfg.Engine.Model, e.Model)
		setString(&cfg.Engine.Language, e.Language)
		set(&cfg.Engine.TimeoutMS, e.TimeoutMS)
		if g := e.Google; g != nil {
			setString(&cfg.Engine.Google.Endpoint, g.Endpoint)
			set(&cfg.Engine.Google.Insecure, g.Insecure)
		}
	}
	if t := payload.Transcript; t != nil {
		set(&cfg.Transcript.StripNoise, t.StripNoise)
		set(&cfg.Transcript.Pad, t.Pad)
	}
	if m := payload.Metrics; m != nil {
		set(&cfg.Metrics.Enable, m.Enable)
		setString(&cfg.Metrics.Addr, m.Addr)
	}
	if p := payload.Publish; p != nil {
		set(&cfg.Publish.Enable, p.Enable)
		if p.Brokers != nil {
			cfg.Publish.Brokers = []string(*p.Brokers)
		}
		setString(&cfg.Publish.TopicPartial, p.TopicPartial)
		setString(&cfg.Publish.TopicFinal, p.TopicFinal)
		setString(&cfg.Publish.Principal, p.Principal)
	}
	if l := payload.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
	}
	if d := payload.Debug; d != nil {
		set(&cfg.Debug.EnableAudioDump, d.AudioDump)
		set(&cfg.Debug.EnableEngineDump, d.EngineDump)
	}
}
