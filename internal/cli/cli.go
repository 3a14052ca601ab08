// Package cli parses scribe's argv into a command plus global flags.
package cli

import (
	"fmt"
	"strings"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandStop    Command = "stop"
	CommandStatus  Command = "status"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

// commands is the help-ordered command table; it also defines which names parse.
var commands = []struct {
	name    Command
	summary string
}{
	{CommandRun, "Capture audio and print a live transcription until interrupted (default)"},
	{CommandStop, "Ask the running instance to shut down and print its summary"},
	{CommandStatus, "Print the running instance's state and counters"},
	{CommandDevices, "List capture backends and Pulse input devices"},
	{CommandDoctor, "Run configuration and environment checks"},
	{CommandVersion, "Print version information"},
	{CommandHelp, "Show this help"},
}

func lookupCommand(name string) (Command, bool) {
	for _, c := range commands {
		if string(c.name) == name {
			return c.name, true
		}
	}
	return "", false
}

// Parsed is the outcome of Parse. LogLevel is empty unless --log-level was given.
type Parsed struct {
	Command    Command
	ConfigPath string
	LogLevel   string
	ShowHelp   bool
}

// Parse reads argv without the binary name. Flags precede the command, and
// no command means run.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandRun}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if !strings.HasPrefix(arg, "-") {
			cmd, ok := lookupCommand(arg)
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q: %s", arg, strings.Join(args[i+1:], " "))
			}
			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			break
		}

		name, value, inline := strings.Cut(arg, "=")
		switch name {
		case "-h", "--help", "--version":
			if inline {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}
		}
		switch name {
		case "-h", "--help":
			parsed.Command, parsed.ShowHelp = CommandHelp, true
			continue
		case "--version":
			parsed.Command, parsed.ShowHelp = CommandVersion, false
			continue
		case "-c", "--config", "--log-level":
		default:
			return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
		}

		if !inline {
			i++
			if i >= len(args) {
				return Parsed{}, fmt.Errorf("%s requires a value", name)
			}
			value = args[i]
		}
		if strings.TrimSpace(value) == "" {
			return Parsed{}, fmt.Errorf("%s requires a value", name)
		}
		if name == "--log-level" {
			parsed.LogLevel = value
		} else {
			parsed.ConfigPath = value
		}
	}

	return parsed, nil
}

// HelpText renders usage for binaryName from the command table.
func HelpText(binaryName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage:\n  %s [flags] [command]\n\nCommands:\n", binaryName)
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-9s %s\n", c.name, c.summary)
	}
	b.WriteString(`
Flags:
  -c, --config PATH        Config file (default: $XDG_CONFIG_HOME/scribe/config.jsonc,
                           or config.yaml / config.yml when that exists instead)
  --log-level LEVEL        Override log.level: debug, info, warn or error
  -h, --help               Show help
  --version                Show version
`)
	return b.String()
}
