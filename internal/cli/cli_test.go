package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Parsed
	}{
		{name: "no args runs", args: nil, want: Parsed{Command: CommandRun}},
		{name: "flags only runs", args: []string{"-c", "/etc/scribe.yaml"}, want: Parsed{Command: CommandRun, ConfigPath: "/etc/scribe.yaml"}},
		{name: "explicit run", args: []string{"run"}, want: Parsed{Command: CommandRun}},
		{
			name: "config and level before status",
			args: []string{"--config=/tmp/cfg.jsonc", "--log-level", "debug", "status"},
			want: Parsed{Command: CommandStatus, ConfigPath: "/tmp/cfg.jsonc", LogLevel: "debug"},
		},
		{name: "inline level", args: []string{"--log-level=warn", "stop"}, want: Parsed{Command: CommandStop, LogLevel: "warn"}},
		{name: "help flag", args: []string{"-h"}, want: Parsed{Command: CommandHelp, ShowHelp: true}},
		{name: "help command", args: []string{"help"}, want: Parsed{Command: CommandHelp, ShowHelp: true}},
		{name: "version flag wins over earlier help", args: []string{"--help", "--version"}, want: Parsed{Command: CommandVersion}},
		{name: "devices", args: []string{"devices"}, want: Parsed{Command: CommandDevices}},
		{name: "doctor", args: []string{"--config", "cfg", "doctor"}, want: Parsed{Command: CommandDoctor, ConfigPath: "cfg"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			require.NoError(t, err)
			require.Equal(t, tc.want, parsed)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		args    []string
		wantErr string
	}{
		{args: []string{"--config"}, wantErr: "--config requires a value"},
		{args: []string{"--config="}, wantErr: "--config requires a value"},
		{args: []string{"-c", " "}, wantErr: "-c requires a value"},
		{args: []string{"--log-level"}, wantErr: "--log-level requires a value"},
		{args: []string{"--verbose"}, wantErr: "unknown flag: --verbose"},
		{args: []string{"--help=yes"}, wantErr: "unknown flag: --help=yes"},
		{args: []string{"toggle"}, wantErr: "unknown command: toggle"},
		{args: []string{"status", "--config", "/tmp/cfg"}, wantErr: `unexpected arguments after command "status": --config /tmp/cfg`},
		{args: []string{"run", "now"}, wantErr: `unexpected arguments after command "run": now`},
	}

	for _, tc := range tests {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			_, err := Parse(tc.args)
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestHelpTextListsEveryParsableCommand(t *testing.T) {
	text := HelpText("scribe")
	require.True(t, strings.HasPrefix(text, "Usage:\n  scribe [flags] [command]\n"))

	for _, c := range commands {
		require.Contains(t, text, "  "+string(c.name)+" ", c.name)
		parsed, err := Parse([]string{string(c.name)})
		require.NoError(t, err)
		require.Equal(t, c.name, parsed.Command)
	}
	require.Contains(t, text, "--log-level LEVEL")
	require.Contains(t, text, "scribe/config.jsonc")
}
