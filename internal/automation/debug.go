package automation

import (
	"context"
)

// debugAction exercises the whole configure/step/teardown loop without
// touching any external service. Only registered when debug actions are
// enabled in the configuration.
type debugAction struct {
	baseAction
}

func NewDebugAction(env *Env) Action {
	return &debugAction{
		baseAction: baseAction{
			env:         env,
			name:        "debug_action",
			displayName: "Debug Action",
		},
	}
}

func (a *debugAction) Options() []Option {
	return []Option{
		{Name: "test", Type: OptionText, Default: "test value"},
	}
}

type debugProgress struct {
	Test string `json:"test"`
}

func (a *debugAction) SetUp(ctx context.Context, values OptionValues) error {
	return a.saveProgress(ctx, &debugProgress{Test: values.String("test")})
}

func (a *debugAction) ProceedWithNextStep(ctx context.Context) *StepData {
	var progress debugProgress
	if !a.loadProgress(ctx, &progress) {
		return lostSessionStep()
	}

	data := NewStepData()
	data.TotalItems = 1
	data.CurrentItemNumber = 1
	data.Status = StatusComplete
	data.Log("Debug action executing with test option '%s'", progress.Test)
	return data
}
