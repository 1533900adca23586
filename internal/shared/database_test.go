package shared

import (
	"testing"
)

func TestDatabase(t *testing.T) {
	t.Run("NewDatabase", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open in-memory database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			t.Errorf("expected a usable connection, got %v", err)
		}
	})

	t.Run("NewDatabase with invalid path", func(t *testing.T) {
		if _, err := NewDatabase("/nonexistent/dir/vgtunes.db"); err == nil {
			t.Error("expected error for unwritable path")
		}
	})

	t.Run("ConfigureDatabase", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open in-memory database: %v", err)
		}
		defer db.Close()

		ConfigureDatabase(db, 3, 1)
		if got := db.Stats().MaxOpenConnections; got != 3 {
			t.Errorf("expected 3 max open connections, got %d", got)
		}

		ConfigureDatabase(db, 0, 0)
		if got := db.Stats().MaxOpenConnections; got != 3 {
			t.Errorf("expected zero values to leave the pool alone, got %d", got)
		}
	})
}
