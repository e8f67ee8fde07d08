package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TerminalCheck verifies the dashboard can take over the terminal.
type TerminalCheck struct {
	Out *os.File
}

func (c *TerminalCheck) Name() string     { return "terminal" }
func (c *TerminalCheck) Category() string { return CategoryTerminal }

func (c *TerminalCheck) Run(context.Context) CheckResult {
	if !term.IsTerminal(int(c.Out.Fd())) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "Output is not a terminal",
			Suggestion: "'pulse dashboard' needs an interactive terminal; 'pulse widget list' and 'pulse status' work anywhere",
		}
	}

	width, height, err := term.GetSize(int(c.Out.Fd()))
	if err != nil {
		width, height = 0, 0
	}
	profile := termenv.NewOutput(c.Out).EnvColorProfile()

	result := CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Terminal %dx%d, %s", width, height, profileName(profile)),
	}
	if profile == termenv.Ascii {
		result.Status = StatusWarn
		result.Suggestion = "Colors are off (NO_COLOR or a dumb terminal); severity colors won't show"
	}
	return result
}

func (c *TerminalCheck) Fix() error {
	return nil
}

func profileName(p termenv.Profile) string {
	switch p {
	case termenv.TrueColor:
		return "true color"
	case termenv.ANSI256:
		return "256 colors"
	case termenv.ANSI:
		return "16 colors"
	default:
		return "no color"
	}
}

// NewTerminalChecks creates the terminal checks for out.
func NewTerminalChecks(out *os.File) []Check {
	return []Check{&TerminalCheck{Out: out}}
}
