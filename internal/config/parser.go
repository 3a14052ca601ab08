package config

import "strings"

// Format names the syntax a config file is written in.
type Format string

const (
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
)

// DetectFormat picks JSONC when the content opens with an object or a JSONC
// comment, and YAML otherwise.
func DetectFormat(content string) Format {
	trimmed := strings.TrimSpace(content)
	for _, prefix := range []string{"{", "//", "/*"} {
		if strings.HasPrefix(trimmed, prefix) {
			return FormatJSONC
		}
	}
	return FormatYAML
}

// Parse reads configuration content as JSONC or YAML and validates the result.
// Both formats share one schema and reject unknown keys.
func Parse(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		validatedWarnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}

	var (
		payload fileConfig
		err     error
	)
	switch DetectFormat(content) {
	case FormatJSONC:
		payload, err = decodeJSONC(content)
	default:
		payload, err = decodeYAML(content)
	}
	if err != nil {
		return Config{}, nil, err
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}
