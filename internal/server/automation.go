package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/chsxf/vgtunes-dashboard/internal/automation"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// AutomationHandler serves the step-driven batch job API. One job at a time:
// execute configures an action, step advances it until a terminal status,
// teardown aborts it.
type AutomationHandler struct {
	registry *automation.Registry
	executor *automation.Executor
	logger   *log.Logger
}

func NewAutomationHandler(registry *automation.Registry, executor *automation.Executor, logger *log.Logger) *AutomationHandler {
	return &AutomationHandler{registry: registry, executor: executor, logger: logger}
}

func (h *AutomationHandler) Routes() []string {
	return []string{
		"/automation/actions",
		"/automation/execute",
		"/automation/step",
		"/automation/teardown",
	}
}

func (h *AutomationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/automation/actions":
		h.requireMethod(w, r, http.MethodGet, h.handleActions)
	case "/automation/execute":
		h.requireMethod(w, r, http.MethodPost, h.handleExecute)
	case "/automation/step":
		h.requireMethod(w, r, http.MethodGet, h.handleStep)
	case "/automation/teardown":
		h.requireMethod(w, r, http.MethodPost, h.handleTeardown)
	default:
		http.NotFound(w, r)
	}
}

func (h *AutomationHandler) requireMethod(w http.ResponseWriter, r *http.Request, method string, next http.HandlerFunc) {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	next(w, r)
}

type actionEntry struct {
	automation.Descriptor
	Options []automation.Option `json:"options"`
}

func (h *AutomationHandler) handleActions(w http.ResponseWriter, _ *http.Request) {
	descriptors := h.registry.List()
	entries := make([]actionEntry, 0, len(descriptors))
	for _, descriptor := range descriptors {
		action, err := h.registry.Resolve(descriptor.Key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		options := action.Options()
		if options == nil {
			options = []automation.Option{}
		}
		entries = append(entries, actionEntry{Descriptor: descriptor, Options: options})
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": entries})
}

func (h *AutomationHandler) handleExecute(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "malformed form data")
		return
	}
	key := r.PostFormValue("action")
	if key == "" {
		writeError(w, http.StatusBadRequest, "missing action key")
		return
	}

	rawOptions := make(map[string]string, len(r.PostForm))
	for name := range r.PostForm {
		if name != "action" {
			rawOptions[name] = r.PostFormValue(name)
		}
	}

	action, err := h.executor.Configure(r.Context(), key, rawOptions)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrUnknownAction):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, shared.ErrInvalidOptions):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to configure action", "key", key, "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"action":      action.DisplayName(),
		"cooldown_ms": action.Cooldown().Milliseconds(),
	})
}

func (h *AutomationHandler) handleStep(w http.ResponseWriter, r *http.Request) {
	data, err := h.executor.Step(r.Context())
	if err != nil {
		if errors.Is(err, shared.ErrNotConfigured) || errors.Is(err, shared.ErrUnknownAction) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to advance action", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *AutomationHandler) handleTeardown(w http.ResponseWriter, r *http.Request) {
	if err := h.executor.Teardown(r.Context()); err != nil {
		h.logger.Error("failed to tear down action", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
