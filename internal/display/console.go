// Package display renders the live transcript on a terminal.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rbright/scribe/internal/transcript"
)

const ruleWidth = 80

// Console overwrites a single progress line in place with carriage returns.
type Console struct {
	mu      sync.Mutex
	w       io.Writer
	pad     bool
	width   int
	pending bool
}

// NewConsole writes to w. With pad set, a shorter line is padded with spaces so
// it covers the previous one.
func NewConsole(w io.Writer, pad bool) *Console {
	return &Console{w: w, pad: pad}
}

// Banner prints the startup header.
func (c *Console) Banner(source string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rule := strings.Repeat("-", ruleWidth)
	_, err := fmt.Fprintf(c.w, "%s\nMicrophone initialized, recording started... (%s)\n%s\nTRANSCRIPTION\n%s\n", rule, source, rule, rule)
	return err
}

// Update replaces the current line with text.
func (c *Console) Update(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := text
	if c.pad {
		line = transcript.Pad(text, c.width)
	}
	c.width = utf8.RuneCountInString(text)
	c.pending = true
	_, err := io.WriteString(c.w, line+"\r")
	return err
}

// Separator commits the current line and starts a new one after a window reset.
func (c *Console) Separator() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.width = 0
	c.pending = false
	_, err := io.WriteString(c.w, "\n")
	return err
}

// Finish moves past a pending progress line so the next output starts cleanly.
func (c *Console) Finish() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.pending {
		return nil
	}
	c.pending = false
	_, err := io.WriteString(c.w, "\n")
	return err
}
