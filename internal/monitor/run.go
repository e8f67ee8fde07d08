package monitor

import (
	"context"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/pulse/internal/dashboard"
	"github.com/rileyhilliard/pulse/internal/errors"
	"github.com/rileyhilliard/pulse/internal/logger"
	"github.com/rileyhilliard/pulse/internal/stream"
	"golang.org/x/term"
)

// DebugLogFile receives log output while the dashboard owns the terminal.
const DebugLogFile = "pulse-debug.log"

// Options configures Run.
type Options struct {
	Store      *dashboard.Store
	Session    *stream.Session
	StatusPoll time.Duration
}

// Run opens the feed session and runs the dashboard until the user quits
// or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrExec,
			"The dashboard needs an interactive terminal",
			"Run 'pulse dashboard' from a terminal, or use 'pulse widget list' for plain output")
	}

	// Log lines would corrupt the alt screen.
	if logger.DebugEnabled() {
		f, err := tea.LogToFile(DebugLogFile, "pulse")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrExec,
				"Couldn't open the debug log",
				"Unset PULSE_DEBUG or make the current directory writable")
		}
		defer f.Close()
	} else {
		prev := log.Writer()
		log.SetOutput(io.Discard)
		defer log.SetOutput(prev)
	}

	opts.Session.Init(ctx)
	defer opts.Session.Teardown()

	sampler := stream.NewSampler(opts.Session)
	bridge := NewBridge()
	model := NewModel(opts.Store, opts.Session, sampler, bridge, opts.StatusPoll)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	bridge.Attach(p)

	_, err := p.Run()

	// The program has stopped reading messages; queued sends return
	// immediately from here on.
	sampler.StopAll()
	bridge.Close()

	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExec, "Dashboard exited with an error", "")
	}
	return nil
}
