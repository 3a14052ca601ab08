// Package transcript assembles engine segments into one display line.
package transcript

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Non-verbal markers emitted by whisper models, e.g. "[MUSIC]" or "(coughs)".
var (
	bracketMarkerPattern = regexp.MustCompile(`\[.*?\]`)
	parenMarkerPattern   = regexp.MustCompile(`\(.*?\)`)
)

// Options controls transcript assembly.
type Options struct {
	StripNoise bool
}

// Assemble joins segment texts with single spaces and collapses whitespace.
func Assemble(segments []string, opts Options) string {
	if len(segments) == 0 {
		return ""
	}

	joined := strings.Join(segments, " ")
	if opts.StripNoise {
		joined = StripNoise(joined)
	}
	return strings.Join(strings.Fields(joined), " ")
}

// StripNoise removes bracketed and parenthesized markers.
func StripNoise(text string) string {
	text = bracketMarkerPattern.ReplaceAllString(text, "")
	return parenMarkerPattern.ReplaceAllString(text, "")
}

// Pad right-pads text with spaces to width runes so it fully covers a previous,
// longer line when overwritten in place.
func Pad(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	return text + strings.Repeat(" ", width-n)
}
