package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/chsxf/vgtunes-dashboard/internal/automation"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// throttleBackoff is how long a run pauses before retrying a step rejected
// with HTTP 429.
const throttleBackoff = 60 * time.Second

var (
	actionTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	actionKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	actionDebugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
)

// ActionsList prints the catalog of registered actions.
func (r *Runner) ActionsList(ctx context.Context, cmd *cli.Command) error {
	db, registry, _, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	descriptors := registry.List()
	if cmd.Bool("json") {
		return r.writeJSON(descriptors, true)
	}

	for _, descriptor := range descriptors {
		title := actionTitleStyle.Render(descriptor.DisplayName)
		if descriptor.Debug {
			title += " " + actionDebugStyle.Render("[debug]")
		}
		r.writePlain("%s\n", title)
		r.writePlain("  %s\n", actionKeyStyle.Render(descriptor.Key))

		action, err := registry.Resolve(descriptor.Key)
		if err != nil {
			return err
		}
		for _, option := range action.Options() {
			line := fmt.Sprintf("  --option %s=<%s>", option.Name, option.Type)
			if option.Default != "" {
				line = fmt.Sprintf("%s (default %s)", line, option.Default)
			}
			if option.Required {
				line += " (required)"
			}
			r.writePlain("%s\n", actionKeyStyle.Render(line))
		}
	}
	return nil
}

// ActionsRun drives one action to completion, pacing steps with the
// action's cooldown and backing off when a platform throttles us.
func (r *Runner) ActionsRun(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: action key", shared.ErrMissingArgument)
	}

	db, _, executor, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	var action automation.Action
	if cmd.Bool("resume") {
		if action, err = executor.Current(ctx); err != nil {
			return err
		}
		if automation.ActionKey(action.Name()) != key {
			return fmt.Errorf("%w: a different action is in flight", shared.ErrInvalidArgument)
		}
		r.logger.Info("resuming action", "action", action.DisplayName())
	} else {
		options, err := parseOptionFlags(cmd.StringSlice("option"))
		if err != nil {
			return err
		}
		if action, err = executor.Configure(ctx, key, options); err != nil {
			return err
		}
		r.logger.Info("starting action", "action", action.DisplayName())
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cooldown := action.Cooldown(); cooldown > 0 {
		limiter = rate.NewLimiter(rate.Every(cooldown), 1)
	}

	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		data, err := executor.Step(ctx)
		if err != nil {
			return err
		}
		r.printStepLogs(data)

		switch data.Status {
		case automation.StatusComplete:
			r.logger.Info("action complete", "items", data.TotalItems)
			return nil
		case automation.StatusFailed:
			if data.HTTPStatusCode == http.StatusTooManyRequests {
				r.logger.Warn("rate limited, backing off", "pause", throttleBackoff)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(throttleBackoff):
				}
				continue
			}
			return fmt.Errorf("action '%s' failed at item %d/%d", action.DisplayName(), data.CurrentItemNumber, data.TotalItems)
		default:
			r.logger.Info("step done", "current", data.CurrentItemNumber, "total", data.TotalItems)
		}
	}
}

// ActionsTeardown aborts the action currently in flight, if any.
func (r *Runner) ActionsTeardown(ctx context.Context, cmd *cli.Command) error {
	db, _, executor, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := executor.Teardown(ctx); err != nil {
		return err
	}
	r.logger.Info("teardown complete")
	return nil
}

func (r *Runner) printStepLogs(data *automation.StepData) {
	for _, line := range data.LogLines {
		switch line.Level {
		case automation.LogError:
			r.logger.Error(line.Message)
		case automation.LogWarning:
			r.logger.Warn(line.Message)
		case automation.LogDebug:
			r.logger.Debug(line.Message)
		default:
			r.logger.Info(line.Message)
		}
	}
}

// parseOptionFlags turns repeated name=value flags into a raw option map.
func parseOptionFlags(entries []string) (map[string]string, error) {
	options := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, value, found := strings.Cut(entry, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("%w: option '%s' must be name=value", shared.ErrInvalidArgument, entry)
		}
		options[name] = value
	}
	return options, nil
}
