// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for the rules engine.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/nathoo/rulecore/engine"
)

// CLI is the line-oriented driver, used for --plain play and scripts.
type CLI struct {
	Session
	Intro     string
	In        io.Reader
	Out       io.Writer
	EchoInput bool   // echo each input line after the prompt (for script playback)
	lastCmd   string // for "again"/"g" repeat
}

// New creates a CLI on stdin and stdout with saves under saveDir.
func New(eng *engine.Engine, intro, saveDir string) *CLI {
	return &CLI{
		Session: Session{Engine: eng, Fs: afero.NewOsFs(), SaveDir: saveDir},
		Intro:   intro,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run shows the intro, then reads commands until /quit, end of input, or
// ctx is done. Lines starting with '#' are comments.
func (c *CLI) Run(ctx context.Context) {
	if c.Intro != "" {
		fmt.Fprintf(c.Out, "%s\n\n", c.Intro)
	}

	scanner := bufio.NewScanner(c.In)
	for ctx.Err() == nil {
		fmt.Fprint(c.Out, "> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			fmt.Fprintln(c.Out, input)
		}

		if strings.HasPrefix(input, "/") {
			r := c.Meta(input)
			c.emit(r.Lines, !r.Plain)
			if r.Quit {
				return
			}
			continue
		}

		input, ok := c.repeat(input)
		if !ok {
			fmt.Fprintln(c.Out, "Nothing to repeat.")
			continue
		}

		turn, err := c.Engine.Step(ctx, input)
		if err != nil {
			c.emit([]string{fmt.Sprintf("Error: %v", err)}, true)
			continue
		}
		c.emit(turn.Output, false)
		if c.Trace {
			c.emit(FormatTrace(turn), false)
		}
	}
}

// repeat resolves "again" and "g" to the previous game command.
func (c *CLI) repeat(input string) (string, bool) {
	switch strings.ToLower(input) {
	case "again", "g":
		return c.lastCmd, c.lastCmd != ""
	}
	c.lastCmd = input
	return input, true
}

func (c *CLI) emit(lines []string, system bool) {
	for _, line := range lines {
		if system {
			fmt.Fprintf(c.Out, "[%s]\n", line)
		} else {
			fmt.Fprintln(c.Out, line)
		}
	}
}
