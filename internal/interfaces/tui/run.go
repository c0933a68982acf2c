package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// RunConfig holds the terminal settings of Run.
type RunConfig struct {
	// AltScreen runs the dashboard in the alternate screen buffer.
	AltScreen bool
	// Input and Output default to the terminal when nil.
	Input  io.Reader
	Output io.Writer
}

// Run starts the dashboard and blocks until the user quits or ctx is
// cancelled.  Cancellation is not an error.
func Run(ctx context.Context, svc Screener, cfg RunConfig, opts ...Option) error {
	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if cfg.Input != nil {
		progOpts = append(progOpts, tea.WithInput(cfg.Input))
	}
	if cfg.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(cfg.Output))
	}

	p := tea.NewProgram(NewModel(ctx, svc, opts...), progOpts...)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
