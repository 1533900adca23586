package automation

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

func newRegistryEnv() *Env {
	return &Env{
		Store:  NewMemoryStore(),
		Config: shared.DefaultConfig(),
		Logger: log.New(io.Discard),
	}
}

func TestRegistry(t *testing.T) {
	t.Run("keys are stable", func(t *testing.T) {
		if got := ActionKey("bandcamp_database_updater"); got != ActionKey("bandcamp_database_updater") {
			t.Errorf("key derivation is not deterministic: %q", got)
		}
		if len(ActionKey("x")) != 40 {
			t.Errorf("expected a 40-character hex key, got %q", ActionKey("x"))
		}
	})

	t.Run("resolves by key", func(t *testing.T) {
		registry := NewRegistry(newRegistryEnv(), false)

		action, err := registry.Resolve(ActionKey("tidal_database_updater"))
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if action.DisplayName() != "Tidal Database Updater" {
			t.Errorf("unexpected action %q", action.DisplayName())
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		registry := NewRegistry(newRegistryEnv(), false)

		_, err := registry.Resolve("nope")
		if !errors.Is(err, shared.ErrUnknownAction) {
			t.Errorf("expected ErrUnknownAction, got %v", err)
		}
	})

	t.Run("debug actions are gated", func(t *testing.T) {
		withoutDebug := NewRegistry(newRegistryEnv(), false)
		withDebug := NewRegistry(newRegistryEnv(), true)

		if len(withDebug.List()) != len(withoutDebug.List())+1 {
			t.Errorf("expected exactly one extra debug action, got %d vs %d",
				len(withDebug.List()), len(withoutDebug.List()))
		}
		if _, err := withoutDebug.Resolve(ActionKey("debug_action")); err == nil {
			t.Error("debug action should not resolve when disabled")
		}

		var foundDebug bool
		for _, descriptor := range withDebug.List() {
			if descriptor.Debug {
				foundDebug = true
			}
		}
		if !foundDebug {
			t.Error("expected a descriptor flagged as debug")
		}
	})

	t.Run("descriptors carry cooldowns", func(t *testing.T) {
		registry := NewRegistry(newRegistryEnv(), false)

		for _, descriptor := range registry.List() {
			if descriptor.Key == ActionKey("tidal_database_updater") && descriptor.CooldownMillis != 5000 {
				t.Errorf("expected 5000ms cooldown for the Tidal updater, got %d", descriptor.CooldownMillis)
			}
		}
	})
}
