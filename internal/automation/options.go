package automation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// Well-known option names shared across actions.
const (
	OptionFirstID  = "first_id"
	OptionLimit    = "limit"
	OptionPlatform = "platform"
)

// OptionType identifies the validation applied to an option value.
type OptionType int

const (
	OptionNonNegativeInt OptionType = iota
	OptionSelect
	OptionText
)

func (t OptionType) String() string {
	switch t {
	case OptionNonNegativeInt:
		return "non_negative_int"
	case OptionSelect:
		return "select"
	default:
		return "text"
	}
}

func (t OptionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// Choice is one selectable value of an [OptionSelect] option.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Option describes one configuration parameter of an action.
type Option struct {
	Name     string     `json:"name"`
	Type     OptionType `json:"type"`
	Default  string     `json:"default,omitempty"`
	Required bool       `json:"required,omitempty"`
	Choices  []Choice   `json:"choices,omitempty"`
}

// OptionValues holds the validated option values of a configured action.
type OptionValues map[string]string

// Int returns the value of a non-negative integer option. Validation
// guarantees the value parses, so a missing or malformed entry reads as 0.
func (v OptionValues) Int(name string) int {
	parsed, err := strconv.Atoi(v[name])
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// String returns the raw value of an option.
func (v OptionValues) String(name string) string {
	return v[name]
}

// ValidateOptions checks raw client-provided values against the declared
// options, applying defaults for absent entries. Unknown raw keys are
// ignored. Any violation wraps [shared.ErrInvalidOptions].
func ValidateOptions(options []Option, raw map[string]string) (OptionValues, error) {
	values := make(OptionValues, len(options))
	for _, option := range options {
		value, provided := raw[option.Name]
		if !provided || value == "" {
			value = option.Default
		}
		if value == "" {
			if option.Required {
				return nil, fmt.Errorf("%w: missing required option '%s'", shared.ErrInvalidOptions, option.Name)
			}
			values[option.Name] = ""
			continue
		}

		switch option.Type {
		case OptionNonNegativeInt:
			parsed, err := strconv.Atoi(value)
			if err != nil || parsed < 0 {
				return nil, fmt.Errorf("%w: option '%s' must be a non-negative integer", shared.ErrInvalidOptions, option.Name)
			}
		case OptionSelect:
			if !hasChoice(option.Choices, value) {
				return nil, fmt.Errorf("%w: option '%s' does not accept value '%s'", shared.ErrInvalidOptions, option.Name, value)
			}
		}
		values[option.Name] = value
	}
	return values, nil
}

func hasChoice(choices []Choice, value string) bool {
	for _, choice := range choices {
		if choice.Value == value {
			return true
		}
	}
	return false
}
