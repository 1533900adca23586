package ui

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chsxf/vgtunes-dashboard/internal/automation"
)

// throttleBackoff is how long the watcher pauses before retrying a step
// rejected with HTTP 429.
const throttleBackoff = 60 * time.Second

// maxVisibleLogs bounds the log tail kept on screen.
const maxVisibleLogs = 12

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ActionListView ViewState = iota
	RunningView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	registry *automation.Registry
	executor *automation.Executor

	width  int
	height int

	actionList list.Model
	action     automation.Action
	pendingKey string
	options    map[string]string

	progressBar progress.Model
	percent     float64
	current     int
	total       int
	logLines    []string
	done        bool
	err         error

	help help.Model
	keys keyMap
}

// NewModel creates a TUI model opening on the action catalog.
func NewModel(ctx context.Context, registry *automation.Registry, executor *automation.Executor) *Model {
	descriptors := registry.List()
	items := make([]list.Item, len(descriptors))
	for i, descriptor := range descriptors {
		items[i] = actionItem{descriptor: descriptor}
	}
	actionList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	actionList.Title = "Automated Actions"

	return &Model{
		ctx:         ctx,
		view:        ActionListView,
		registry:    registry,
		executor:    executor,
		actionList:  actionList,
		options:     map[string]string{},
		progressBar: progress.New(progress.WithDefaultGradient()),
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// NewRunModel creates a TUI model that immediately configures and runs the
// given action with the provided raw option values.
func NewRunModel(ctx context.Context, registry *automation.Registry, executor *automation.Executor, actionKey string, options map[string]string) *Model {
	model := NewModel(ctx, registry, executor)
	model.view = RunningView
	model.options = options
	model.pendingKey = actionKey
	return model
}

// Init starts the configure step when an action was preselected.
func (m *Model) Init() tea.Cmd {
	if m.view == RunningView && m.pendingKey != "" {
		return m.configure(m.pendingKey)
	}
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.actionList.SetSize(msg.Width-4, msg.Height-8)
		m.progressBar.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ActionListView:
			return m.handleActionListKeys(msg)
		case RunningView, ResultView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case configuredMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ResultView
			return m, nil
		}
		m.action = msg.action
		m.view = RunningView
		return m, m.step()

	case stepResultMsg:
		return m.handleStepResult(msg)

	case cooldownElapsedMsg:
		return m, m.step()
	}

	if m.view == ActionListView {
		var cmd tea.Cmd
		m.actionList, cmd = m.actionList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleActionListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		selected := m.actionList.SelectedItem()
		if item, ok := selected.(actionItem); ok {
			m.view = RunningView
			return m, m.configure(item.descriptor.Key)
		}
	}

	var cmd tea.Cmd
	m.actionList, cmd = m.actionList.Update(msg)
	return m, cmd
}

func (m *Model) handleStepResult(msg stepResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.view = ResultView
		return m, nil
	}

	data := msg.data
	m.current = data.CurrentItemNumber
	m.total = data.TotalItems
	if percent, ok := data.NormalizedProgress(); ok {
		m.percent = percent
	}
	for _, line := range data.LogLines {
		m.appendLog(line)
	}

	switch data.Status {
	case automation.StatusComplete:
		m.done = true
		m.view = ResultView
		return m, nil
	case automation.StatusFailed:
		if data.HTTPStatusCode == http.StatusTooManyRequests {
			m.appendLog(automation.LogLine{
				Message: fmt.Sprintf("Rate limited, retrying in %s", throttleBackoff),
				Level:   automation.LogWarning,
			})
			return m, waitCooldown(throttleBackoff)
		}
		m.view = ResultView
		return m, nil
	default:
		return m, waitCooldown(m.action.Cooldown())
	}
}

func (m *Model) appendLog(line automation.LogLine) {
	var rendered string
	switch line.Level {
	case automation.LogError:
		rendered = styles.err.Render(line.Message)
	case automation.LogWarning:
		rendered = styles.warn.Render(line.Message)
	case automation.LogDebug:
		rendered = styles.help.Render(line.Message)
	default:
		rendered = line.Message
	}
	m.logLines = append(m.logLines, rendered)
	if len(m.logLines) > maxVisibleLogs {
		m.logLines = m.logLines[len(m.logLines)-maxVisibleLogs:]
	}
}

func (m *Model) configure(actionKey string) tea.Cmd {
	return func() tea.Msg {
		action, err := m.executor.Configure(m.ctx, actionKey, m.options)
		return configuredMsg{action: action, err: err}
	}
}

func (m *Model) step() tea.Cmd {
	return func() tea.Msg {
		data, err := m.executor.Step(m.ctx)
		return stepResultMsg{data: data, err: err}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ActionListView:
		return m.renderActionList()
	case RunningView:
		return m.renderRunning()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) renderActionList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.actionList.View(), helpView)
}

func (m *Model) renderRunning() string {
	title := "Running"
	if m.action != nil {
		title = fmt.Sprintf("Running '%s'", m.action.DisplayName())
	}

	counter := ""
	if m.total > 0 {
		counter = fmt.Sprintf("%d/%d", m.current, m.total)
	}

	return fmt.Sprintf("%s\n\n%s %s\n\n%s\n\n%s",
		styles.title.Render(title),
		m.progressBar.ViewAs(m.percent),
		counter,
		strings.Join(m.logLines, "\n"),
		m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderResult() string {
	var outcome string
	switch {
	case m.err != nil:
		outcome = styles.err.Render(fmt.Sprintf("Failed: %v", m.err))
	case m.done:
		outcome = styles.ok.Render(fmt.Sprintf("✓ Complete (%d items)", m.total))
	default:
		outcome = styles.err.Render("Stopped before completion")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s",
		outcome,
		strings.Join(m.logLines, "\n"),
		m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}
