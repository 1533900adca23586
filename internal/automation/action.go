// package automation implements the automated reconciliation engine: long,
// rate-limited batch jobs driven one step per request by a polling client.
//
// An [Action] is a unit of configurable, resumable batch work. Its durable
// cursor state lives in a [ProgressStore] keyed by the action's identity, so
// a job survives across requests and process restarts. The [Executor]
// orchestrates one action at a time through setup, stepping and teardown.
package automation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// Status reports the outcome of one step, using the compact wire values the
// polling client consumes.
type Status string

const (
	StatusOK       Status = "ok"
	StatusComplete Status = "cp"
	StatusFailed   Status = "fl"
)

// LogLevel tags a step log line for display severity.
type LogLevel string

const (
	LogDebug   LogLevel = "d"
	LogError   LogLevel = "e"
	LogInfo    LogLevel = "l"
	LogWarning LogLevel = "w"
)

// LogLine is one message emitted during a step. It serializes as a
// [message, severity] pair.
type LogLine struct {
	Message string
	Level   LogLevel
}

func (l LogLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{l.Message, string(l.Level)})
}

// StepData is the transient result of one step. It is serialized to the
// client and never persisted.
type StepData struct {
	Status            Status
	CurrentItemNumber int
	TotalItems        int
	LogLines          []LogLine
	HTTPStatusCode    int
}

// NewStepData creates a StepData with status OK and no log lines.
func NewStepData() *StepData {
	return &StepData{Status: StatusOK}
}

// FailedStep creates a failed StepData carrying a single error log line.
// httpStatus is the upstream HTTP status when one applies, 0 otherwise.
func FailedStep(httpStatus int, message string) *StepData {
	data := &StepData{Status: StatusFailed, HTTPStatusCode: httpStatus}
	data.LogAs(LogError, "%s", message)
	return data
}

// Log appends an informational log line.
func (d *StepData) Log(format string, args ...any) {
	d.LogAs(LogInfo, format, args...)
}

// LogAs appends a log line with the given severity.
func (d *StepData) LogAs(level LogLevel, format string, args ...any) {
	d.LogLines = append(d.LogLines, LogLine{Message: fmt.Sprintf(format, args...), Level: level})
}

// NormalizedProgress returns the progress ratio in [0,1]. The second return
// is false when no total is known; note the ratio is a display proxy only,
// completion is signaled by [StatusComplete].
func (d *StepData) NormalizedProgress() (float64, bool) {
	if d.TotalItems > 0 {
		return float64(d.CurrentItemNumber) / float64(d.TotalItems), true
	}
	return 0, false
}

func (d *StepData) MarshalJSON() ([]byte, error) {
	logs := d.LogLines
	if logs == nil {
		logs = []LogLine{}
	}
	return json.Marshal(struct {
		Total          int       `json:"total"`
		Current        int       `json:"current"`
		Status         Status    `json:"status"`
		Logs           []LogLine `json:"logs"`
		HTTPStatusCode int       `json:"httpStatusCode,omitempty"`
	}{d.TotalItems, d.CurrentItemNumber, d.Status, logs, d.HTTPStatusCode})
}

// Env bundles the collaborators every action works against.
type Env struct {
	DB         *sql.DB
	Store      ProgressStore
	Helpers    platforms.HelperFactory
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Action is a polymorphic unit of batch work.
//
// SetUp computes the initial work set from the validated options and persists
// the job's progress; it must not persist anything when it fails.
// ProceedWithNextStep performs exactly one unit of externally-visible work,
// advancing the durable cursor only on success so a failed step can be
// retried identically. ShutDown clears the progress slot and is safe to call
// more than once.
type Action interface {
	Name() string
	DisplayName() string
	Cooldown() time.Duration
	Options() []Option

	SetUp(ctx context.Context, values OptionValues) error
	ProceedWithNextStep(ctx context.Context) *StepData
	ShutDown(ctx context.Context)
}

// baseAction carries the identity, cooldown and progress plumbing shared by
// all concrete actions.
type baseAction struct {
	env         *Env
	name        string
	displayName string
	cooldown    time.Duration
}

func (a *baseAction) Name() string            { return a.name }
func (a *baseAction) DisplayName() string     { return a.displayName }
func (a *baseAction) Cooldown() time.Duration { return a.cooldown }

// Options declares the limit/cursor-seed pair common to sequential actions.
// Actions with a different surface override this.
func (a *baseAction) Options() []Option {
	return []Option{
		{Name: OptionLimit, Type: OptionNonNegativeInt, Default: "0"},
		{Name: OptionFirstID, Type: OptionNonNegativeInt, Default: "0"},
	}
}

// progressSlot namespaces the durable progress of this action so distinct
// actions never collide in the store.
func (a *baseAction) progressSlot() string {
	return ActionKey(a.name) + "_progress"
}

// saveProgress serializes and persists the action's progress value.
func (a *baseAction) saveProgress(ctx context.Context, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("unable to encode progress data: %w", err)
	}
	return a.env.Store.Put(ctx, a.progressSlot(), encoded)
}

// loadProgress restores the action's progress value. Returns false when the
// slot is missing or malformed; the caller reports a lost session.
func (a *baseAction) loadProgress(ctx context.Context, value any) bool {
	encoded, ok, err := a.env.Store.Get(ctx, a.progressSlot())
	if err != nil || !ok {
		return false
	}
	return json.Unmarshal(encoded, value) == nil
}

// ShutDown clears the progress slot.
func (a *baseAction) ShutDown(ctx context.Context) {
	if err := a.env.Store.Delete(ctx, a.progressSlot()); err != nil {
		a.env.Logger.Warn("failed to clear progress slot", "action", a.name, "error", err)
	}
}

// stepFailure converts an error into a failed step, surfacing the upstream
// HTTP status when the error is a platform [platforms.ProviderError].
func stepFailure(err error) *StepData {
	var providerErr *platforms.ProviderError
	if errors.As(err, &providerErr) {
		return FailedStep(providerErr.StatusCode, err.Error())
	}
	return FailedStep(0, err.Error())
}
