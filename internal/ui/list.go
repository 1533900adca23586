package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/chsxf/vgtunes-dashboard/internal/automation"
)

var (
	_ list.Item = actionItem{}
)

// actionItem wraps [automation.Descriptor] to implement [list.Item].
type actionItem struct {
	descriptor automation.Descriptor
}

func (i actionItem) FilterValue() string { return i.descriptor.DisplayName }
func (i actionItem) Title() string       { return i.descriptor.DisplayName }
func (i actionItem) Description() string {
	desc := fmt.Sprintf("cooldown %dms", i.descriptor.CooldownMillis)
	if i.descriptor.Debug {
		desc = fmt.Sprintf("%s • debug", desc)
	}
	return desc
}
