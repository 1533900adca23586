package platforms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func newSpotifyTestHelper(t *testing.T, apiHandler http.HandlerFunc) (*SpotifyHelper, *int) {
	t.Helper()

	tokenCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/", apiHandler)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	helper := NewSpotifyHelper(shared.ClientCredentialsConfig{
		ClientID:     "id",
		ClientSecret: "secret",
	}, NewTokenCache(openTestDB(t)), srv.Client())
	helper.baseURL = srv.URL
	helper.tokenURL = srv.URL + "/api/token"
	return helper, &tokenCalls
}

func TestSpotifySearch(t *testing.T) {
	ctx := context.Background()

	t.Run("parses albums and pagination", func(t *testing.T) {
		helper, _ := newSpotifyTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("unexpected authorization header %q", got)
			}
			if got := r.URL.Query().Get("market"); got != "US" {
				t.Errorf("unexpected market %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"albums":{"items":[
				{"id":"abc","name":"Celeste","artists":[{"name":"Lena Raine"}],"images":[{"url":"https://img/1"}]}
			],"next":"https://api.spotify.com/v1/search?offset=50&limit=50"}}`)
		})

		albums, err := helper.Search(ctx, "celeste", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(albums) != 1 {
			t.Fatalf("expected 1 album, got %d", len(albums))
		}
		if albums[0].Title != "Celeste" || albums[0].PlatformID != "abc" {
			t.Errorf("unexpected album %+v", albums[0])
		}
		if albums[0].CoverURL != "https://img/1" {
			t.Errorf("unexpected cover %q", albums[0].CoverURL)
		}

		start, ok := helper.NextPageStart()
		if !ok || start != 50 {
			t.Errorf("expected next page at 50, got %d (%v)", start, ok)
		}
	})

	t.Run("rejects empty queries", func(t *testing.T) {
		helper, _ := newSpotifyTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("search endpoint should not be reached")
		})

		_, err := helper.Search(ctx, "   ", 0)
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("surfaces throttling status", func(t *testing.T) {
		helper, _ := newSpotifyTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := helper.Search(ctx, "celeste", 0)
		var providerErr *ProviderError
		if !errors.As(err, &providerErr) {
			t.Fatalf("expected a ProviderError, got %v", err)
		}
		if providerErr.StatusCode != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", providerErr.StatusCode)
		}
	})

	t.Run("reuses the cached token", func(t *testing.T) {
		helper, tokenCalls := newSpotifyTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"albums":{"items":[],"next":null}}`)
		})

		for range 3 {
			if _, err := helper.Search(ctx, "celeste", 0); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if *tokenCalls != 1 {
			t.Errorf("expected a single token fetch, got %d", *tokenCalls)
		}
	})
}

func TestSpotifyAlbumAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("available album", func(t *testing.T) {
		helper, _ := newSpotifyTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"abc","name":"Celeste"}`)
		})

		availability, err := helper.AlbumAvailability(ctx, "abc")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability != Available {
			t.Errorf("expected available, got %q", availability)
		}
	})

	t.Run("missing album", func(t *testing.T) {
		helper, _ := newSpotifyTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		availability, err := helper.AlbumAvailability(ctx, "gone")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability != NotAvailable {
			t.Errorf("expected not available, got %q", availability)
		}
	})
}
