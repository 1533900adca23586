package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
	"github.com/chsxf/vgtunes-dashboard/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for running actions.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/vgtunes-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, registry, executor, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	var model *ui.Model
	if key := cmd.StringArg("key"); key != "" {
		options, err := parseOptionFlags(cmd.StringSlice("option"))
		if err != nil {
			return err
		}
		model = ui.NewRunModel(ctx, registry, executor, key, options)
	} else {
		model = ui.NewModel(ctx, registry, executor)
	}
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
