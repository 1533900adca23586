package platforms

import (
	"context"
	"database/sql"
	"testing"
)

func seedSteamProducts(t *testing.T, db *sql.DB) {
	t.Helper()
	products := []struct {
		appID int64
		name  string
		kind  SteamProductType
	}{
		{1001, "Celeste", SteamProductGame},
		{1002, "Celeste - Farewell", SteamProductDLC},
		{1003, "Celeste Original Soundtrack", SteamProductOther},
		{1004, "Hollow Knight", SteamProductGame},
	}
	for _, p := range products {
		_, err := db.Exec("INSERT INTO steam_products (app_id, name, type) VALUES (?, ?, ?)",
			p.appID, p.name, string(p.kind))
		if err != nil {
			t.Fatalf("Failed to seed steam products: %v", err)
		}
	}
}

func TestSteamSearch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedSteamProducts(t, db)

	t.Run("game helper only sees games and dlc", func(t *testing.T) {
		helper := NewSteamGameHelper(db)

		albums, err := helper.Search(ctx, "Celeste", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, album := range albums {
			if album.PlatformID == "1003" {
				t.Errorf("soundtrack product leaked into game search: %+v", album)
			}
		}
		if len(albums) == 0 {
			t.Fatal("expected at least one result")
		}
		if albums[0].PlatformID != "1001" {
			t.Errorf("expected exact-length title ranked first, got %+v", albums[0])
		}
	})

	t.Run("soundtrack helper only sees other products", func(t *testing.T) {
		helper := NewSteamSoundtrackHelper(db)

		albums, err := helper.Search(ctx, "Celeste", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(albums) != 1 || albums[0].PlatformID != "1003" {
			t.Fatalf("expected only the soundtrack product, got %+v", albums)
		}
	})
}

func TestSteamSearchExactMatch(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	seedSteamProducts(t, db)

	t.Run("game matches on cleaned title equality", func(t *testing.T) {
		helper := NewSteamGameHelper(db)

		match, err := helper.SearchExactMatch(ctx, "Celeste", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if match == nil || match.PlatformID != "1001" {
			t.Fatalf("expected app 1001, got %+v", match)
		}
	})

	t.Run("no equality match yields nil", func(t *testing.T) {
		helper := NewSteamGameHelper(db)

		match, err := helper.SearchExactMatch(ctx, "Hollow", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if match != nil {
			t.Errorf("expected no match, got %+v", match)
		}
	})
}
