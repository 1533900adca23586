package automation

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// currentActionSlot stores the key of the action currently being stepped.
const currentActionSlot = "current_automated_action"

// Executor drives one action at a time through its lifecycle: configure,
// step until a terminal status, tear down. The current action key is
// persisted alongside the action's own progress, so stepping resumes across
// process restarts.
type Executor struct {
	registry *Registry
	store    ProgressStore
	logger   *log.Logger
}

func NewExecutor(registry *Registry, store ProgressStore, logger *log.Logger) *Executor {
	return &Executor{registry: registry, store: store, logger: logger}
}

// Configure resolves, validates and sets up the action identified by key,
// then records it as the current action. Nothing is persisted when setup
// fails.
func (e *Executor) Configure(ctx context.Context, key string, rawOptions map[string]string) (Action, error) {
	action, err := e.registry.Resolve(key)
	if err != nil {
		return nil, err
	}
	values, err := ValidateOptions(action.Options(), rawOptions)
	if err != nil {
		return nil, err
	}
	if err := action.SetUp(ctx, values); err != nil {
		return nil, fmt.Errorf("failed to set up action '%s': %w", action.DisplayName(), err)
	}
	if err := e.store.Put(ctx, currentActionSlot, []byte(key)); err != nil {
		return nil, err
	}
	e.logger.Info("action configured", "job_id", shared.GenerateID(), "action", action.DisplayName())
	return action, nil
}

// Current returns the action recorded as currently executing. Returns
// [shared.ErrNotConfigured] when no action is in flight.
func (e *Executor) Current(ctx context.Context) (Action, error) {
	key, ok, err := e.store.Get(ctx, currentActionSlot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.ErrNotConfigured
	}
	action, err := e.registry.Resolve(string(key))
	if err != nil {
		return nil, err
	}
	return action, nil
}

// Step advances the current action by exactly one unit of work. When the
// step completes the whole job, the action is torn down immediately so no
// stale progress outlives it. A failed step leaves everything in place for a
// retry.
func (e *Executor) Step(ctx context.Context) (*StepData, error) {
	action, err := e.Current(ctx)
	if err != nil {
		return nil, err
	}
	data := action.ProceedWithNextStep(ctx)
	switch data.Status {
	case StatusComplete:
		e.logger.Info("action complete", "action", action.DisplayName(), "items", data.TotalItems)
		e.teardown(ctx, action)
	case StatusFailed:
		e.logger.Warn("action step failed", "action", action.DisplayName())
	}
	return data, nil
}

// Teardown aborts the current action, clearing its progress and the current
// slot. Calling it with no action in flight is a no-op.
func (e *Executor) Teardown(ctx context.Context) error {
	action, err := e.Current(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotConfigured) {
			return nil
		}
		return err
	}
	e.logger.Info("action torn down", "action", action.DisplayName())
	e.teardown(ctx, action)
	return nil
}

func (e *Executor) teardown(ctx context.Context, action Action) {
	action.ShutDown(ctx)
	if err := e.store.Delete(ctx, currentActionSlot); err != nil {
		e.logger.Warn("failed to clear current action slot", "error", err)
	}
}
