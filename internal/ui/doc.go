// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI drives one automated action from the terminal:
//  1. [ActionListView] : Browse and select an available action
//  2. [RunningView] : Watch the job advance step by step with a progress bar and live logs
//  3. [ResultView] : Display the job outcome
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Between steps the model waits out the action's cooldown, stretching the pause
// when the upstream platform answers with HTTP 429.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
