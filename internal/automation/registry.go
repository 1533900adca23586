package automation

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// ActionKey derives the stable public identifier of an action from its name.
// Clients address actions by this key, never by name.
func ActionKey(name string) string {
	digest := sha1.Sum([]byte(name))
	return hex.EncodeToString(digest[:])
}

// Descriptor is the client-facing summary of a registered action.
type Descriptor struct {
	Key            string `json:"key"`
	DisplayName    string `json:"display_name"`
	CooldownMillis int64  `json:"cooldown_ms"`
	Debug          bool   `json:"debug"`
}

// Registry holds the catalog of available actions, keyed by their stable
// identifiers. Debug actions are only registered when enabled in the
// configuration.
type Registry struct {
	actions map[string]Action
	debug   map[string]bool
	order   []string
}

// NewRegistry builds the catalog of production actions, plus the debug ones
// when includeDebug is set.
func NewRegistry(env *Env, includeDebug bool) *Registry {
	registry := &Registry{
		actions: make(map[string]Action),
		debug:   make(map[string]bool),
	}
	registry.register(NewBandcampUpdater(env), false)
	registry.register(NewTidalUpdater(env), false)
	registry.register(NewMultiArtistsUpdater(env), false)
	registry.register(NewSteamUpdater(env), false)
	registry.register(NewSteamProductsUpdater(env), false)
	registry.register(NewAvailabilityChecker(env), false)
	if includeDebug {
		registry.register(NewDebugAction(env), true)
	}
	return registry
}

func (r *Registry) register(action Action, debug bool) {
	key := ActionKey(action.Name())
	if _, exists := r.actions[key]; exists {
		panic(fmt.Sprintf("duplicate action key for '%s'", action.Name()))
	}
	r.actions[key] = action
	r.debug[key] = debug
	r.order = append(r.order, key)
}

// Resolve returns the action registered under the given key.
func (r *Registry) Resolve(key string) (Action, error) {
	action, ok := r.actions[key]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", shared.ErrUnknownAction, key)
	}
	return action, nil
}

// List returns the descriptors of all registered actions in registration
// order.
func (r *Registry) List() []Descriptor {
	descriptors := make([]Descriptor, 0, len(r.order))
	for _, key := range r.order {
		action := r.actions[key]
		descriptors = append(descriptors, Descriptor{
			Key:            key,
			DisplayName:    action.DisplayName(),
			CooldownMillis: action.Cooldown().Milliseconds(),
			Debug:          r.debug[key],
		})
	}
	return descriptors
}
