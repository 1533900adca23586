package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newDeezerTestHelper(t *testing.T, handler http.HandlerFunc) *DeezerHelper {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	helper := NewDeezerHelper(srv.Client())
	helper.searchURL = srv.URL + "/search/album"
	helper.albumURL = srv.URL + "/album/"
	return helper
}

func TestDeezerSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("parses albums and pagination", func(t *testing.T) {
		helper := newDeezerTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("q"); got != "celeste" {
				t.Errorf("unexpected query %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[
				{"id":302127,"title":"Celeste","artist":{"name":"Lena Raine"},"cover_xl":"https://img/xl"}
			],"next":"https://api.deezer.com/search/album?q=celeste&index=100"}`)
		})

		albums, err := helper.Search(ctx, "celeste", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(albums) != 1 {
			t.Fatalf("expected 1 album, got %d", len(albums))
		}
		if albums[0].PlatformID != "302127" {
			t.Errorf("expected numeric id as string, got %q", albums[0].PlatformID)
		}
		if albums[0].Artists[0] != "Lena Raine" {
			t.Errorf("unexpected artists %v", albums[0].Artists)
		}

		start, ok := helper.NextPageStart()
		if !ok || start != 100 {
			t.Errorf("expected next page at 100, got %d (%v)", start, ok)
		}
	})

	t.Run("no next page", func(t *testing.T) {
		helper := newDeezerTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"data":[]}`)
		})

		if _, err := helper.Search(ctx, "celeste", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := helper.NextPageStart(); ok {
			t.Error("expected no next page")
		}
	})
}

func TestDeezerAlbumAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("available album", func(t *testing.T) {
		helper := newDeezerTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":302127,"title":"Celeste"}`)
		})

		availability, err := helper.AlbumAvailability(ctx, "302127")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability != Available {
			t.Errorf("expected available, got %q", availability)
		}
	})

	t.Run("deleted album reported through error payload", func(t *testing.T) {
		helper := newDeezerTestHelper(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"error":{"type":"DataException","message":"no data","code":800}}`)
		})

		availability, err := helper.AlbumAvailability(ctx, "302127")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if availability != NotAvailable {
			t.Errorf("expected not available, got %q", availability)
		}
	})
}
