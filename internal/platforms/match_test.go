package platforms

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// scriptedSearcher returns canned results per query and records every call.
type scriptedSearcher struct {
	responses map[string][]Album
	calls     []string
}

func (s *scriptedSearcher) Search(_ context.Context, query string, _ int) ([]Album, error) {
	s.calls = append(s.calls, query)
	return s.responses[query], nil
}

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"plain title unchanged", "Celeste", "Celeste"},
		{"parenthesized chunk stripped", "Hades (Original Soundtrack)", "Hades"},
		{"ep suffix stripped", "Short Trip - EP", "Short Trip"},
		{"volume suffix stripped", "Persona 5, Vol. 2", "Persona 5"},
		{"non alphanumerics stripped", "NieR:Automata", "NieRAutomata"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanTitle(tc.title); got != tc.want {
				t.Errorf("CleanTitle(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestSearchExactMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("matches on the raw title first", func(t *testing.T) {
		searcher := &scriptedSearcher{responses: map[string][]Album{
			"Celeste": {{Title: "Celeste", PlatformID: "1", Artists: []string{"Lena Raine"}}},
		}}

		match, err := SearchExactMatch(ctx, searcher, "Celeste", []string{"Lena Raine"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if match == nil || match.PlatformID != "1" {
			t.Fatalf("expected album 1, got %+v", match)
		}
		if len(searcher.calls) != 1 {
			t.Errorf("expected a single search, got %v", searcher.calls)
		}
	})

	t.Run("falls back to cleaned titles", func(t *testing.T) {
		searcher := &scriptedSearcher{responses: map[string][]Album{
			"Hades": {{Title: "Hades: Original Soundtrack", PlatformID: "7", Artists: []string{"Darren Korb"}}},
		}}

		match, err := SearchExactMatch(ctx, searcher, "Hades (Original Soundtrack)", []string{"Darren Korb"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if match == nil || match.PlatformID != "7" {
			t.Fatalf("expected album 7, got %+v", match)
		}

		// First pass searches the raw title, second the stripped one.
		wantCalls := []string{"Hades (Original Soundtrack)", "Hades"}
		if diff := cmp.Diff(wantCalls, searcher.calls); diff != "" {
			t.Errorf("search calls mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects candidates by artist", func(t *testing.T) {
		searcher := &scriptedSearcher{responses: map[string][]Album{
			"Celeste": {{Title: "Celeste", PlatformID: "1", Artists: []string{"Someone Else"}}},
		}}

		match, err := SearchExactMatch(ctx, searcher, "Celeste", []string{"Lena Raine"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if match != nil {
			t.Errorf("expected no match, got %+v", match)
		}
	})

	t.Run("title prefix comparison is case-insensitive", func(t *testing.T) {
		searcher := &scriptedSearcher{responses: map[string][]Album{
			"celeste": {{Title: "CELESTE (Deluxe)", PlatformID: "3", Artists: []string{"Lena Raine"}}},
		}}

		match, err := SearchExactMatch(ctx, searcher, "celeste", []string{"lena raine"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if match == nil || match.PlatformID != "3" {
			t.Fatalf("expected album 3, got %+v", match)
		}
	})

	t.Run("returns nil when every pass misses", func(t *testing.T) {
		searcher := &scriptedSearcher{responses: map[string][]Album{}}

		match, err := SearchExactMatch(ctx, searcher, "Completely Unknown", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if match != nil {
			t.Errorf("expected no match, got %+v", match)
		}
		if len(searcher.calls) == 0 {
			t.Error("expected at least one search call")
		}
	})
}

func TestSplitWords(t *testing.T) {
	got := SplitWords("The Dark Side: of the DARK moon!")
	want := []string{"the", "dark", "side", "of", "moon"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SplitWords mismatch (-want +got):\n%s", diff)
	}
}

func TestRankByDistance(t *testing.T) {
	albums := []Album{
		{Title: "Dark Side Redux Extended Anniversary Edition", PlatformID: "redux"},
		{Title: "The Dark Side of the Moon", PlatformID: "moon"},
		{Title: "Darkness", PlatformID: "darkness"},
	}

	ranked := RankByDistance("dark side", albums)

	if len(ranked) != 2 {
		t.Fatalf("expected 2 eligible albums, got %d", len(ranked))
	}
	if ranked[0].PlatformID != "moon" {
		t.Errorf("expected closest length first, got %q", ranked[0].PlatformID)
	}
	if ranked[1].PlatformID != "redux" {
		t.Errorf("expected redux second, got %q", ranked[1].PlatformID)
	}
}

func TestRankByDistanceTieBreak(t *testing.T) {
	albums := []Album{
		{Title: "dark side zz", PlatformID: "z"},
		{Title: "dark side aa", PlatformID: "a"},
	}

	ranked := RankByDistance("dark side", albums)
	if ranked[0].PlatformID != "a" || ranked[1].PlatformID != "z" {
		t.Errorf("expected deterministic title tie-break, got %q then %q", ranked[0].PlatformID, ranked[1].PlatformID)
	}
}
