package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/chsxf/vgtunes-dashboard/internal/automation"
)

// configuredMsg reports the outcome of setting up the selected action.
type configuredMsg struct {
	action automation.Action
	err    error
}

// stepResultMsg carries the result of one job step.
type stepResultMsg struct {
	data *automation.StepData
	err  error
}

// cooldownElapsedMsg fires when the pause between two steps is over.
type cooldownElapsedMsg struct{}

// waitCooldown schedules the next step after the given pause.
func waitCooldown(pause time.Duration) tea.Cmd {
	return tea.Tick(pause, func(time.Time) tea.Msg {
		return cooldownElapsedMsg{}
	})
}
