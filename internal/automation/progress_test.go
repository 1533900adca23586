package automation

import (
	"context"
	"testing"

	testhelpers "github.com/chsxf/vgtunes-dashboard/internal/testing"
)

func TestProgressStores(t *testing.T) {
	ctx := context.Background()

	stores := map[string]func(t *testing.T) ProgressStore{
		"memory": func(t *testing.T) ProgressStore { return NewMemoryStore() },
		"sqlite": func(t *testing.T) ProgressStore { return NewSQLiteStore(testhelpers.OpenTestDB(t)) },
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := open(t)

			t.Run("missing key", func(t *testing.T) {
				_, ok, err := store.Get(ctx, "missing")
				if err != nil {
					t.Fatalf("Get failed: %v", err)
				}
				if ok {
					t.Error("expected missing key")
				}
			})

			t.Run("put then get", func(t *testing.T) {
				if err := store.Put(ctx, "slot", []byte(`{"current":1}`)); err != nil {
					t.Fatalf("Put failed: %v", err)
				}
				value, ok, err := store.Get(ctx, "slot")
				if err != nil || !ok {
					t.Fatalf("Get failed: %v (%v)", err, ok)
				}
				if string(value) != `{"current":1}` {
					t.Errorf("unexpected value %q", value)
				}
			})

			t.Run("overwrite", func(t *testing.T) {
				if err := store.Put(ctx, "slot", []byte(`{"current":2}`)); err != nil {
					t.Fatalf("Put failed: %v", err)
				}
				value, _, _ := store.Get(ctx, "slot")
				if string(value) != `{"current":2}` {
					t.Errorf("unexpected value %q", value)
				}
			})

			t.Run("delete", func(t *testing.T) {
				if err := store.Delete(ctx, "slot"); err != nil {
					t.Fatalf("Delete failed: %v", err)
				}
				if _, ok, _ := store.Get(ctx, "slot"); ok {
					t.Error("expected key to be gone")
				}
				// Deleting again is harmless.
				if err := store.Delete(ctx, "slot"); err != nil {
					t.Fatalf("second Delete failed: %v", err)
				}
			})
		})
	}
}
