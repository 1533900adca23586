package platforms

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

// cleanupPasses are applied cumulatively to a query title, cheapest first. A
// nil entry means "search with the title as-is". Later passes are more
// aggressive so that a stricter earlier pass wins when both would match.
var cleanupPasses = []*regexp.Regexp{
	nil,
	regexp.MustCompile(`\s*\([^)]*\)`),
	regexp.MustCompile(`(?i)\s*-\s+EP\s*$`),
	regexp.MustCompile(`(?i)[\s,]*vol(?:\.|ume)?\s*\d+\s*$`),
	regexp.MustCompile(`[^0-9A-Za-z ]`),
}

// searcher is the subset of [Helper] the exact-match pipeline needs.
type searcher interface {
	Search(ctx context.Context, query string, startAt int) ([]Album, error)
}

// CleanTitle applies every cleanup pass to title, yielding the most aggressive
// normalization.
func CleanTitle(title string) string {
	query := title
	for _, re := range cleanupPasses {
		if re != nil {
			query = strings.TrimSpace(re.ReplaceAllString(query, ""))
		}
	}
	return query
}

// SearchExactMatch runs the progressive title-cleanup pipeline against the
// adapter's search endpoint and returns the first candidate whose title starts
// with the normalized query (case-insensitive) and, when artists are supplied,
// that shares at least one artist with the query.
//
// Returns nil when no pass yields a match.
func SearchExactMatch(ctx context.Context, s searcher, title string, artists []string) (*Album, error) {
	query := title
	for _, re := range cleanupPasses {
		if re != nil {
			query = strings.TrimSpace(re.ReplaceAllString(query, ""))
		}
		if query == "" {
			continue
		}

		results, err := s.Search(ctx, query, 0)
		if err != nil {
			return nil, err
		}

		for _, result := range results {
			if !hasFoldPrefix(result.Title, query) {
				continue
			}
			if len(artists) > 0 && !artistsOverlap(result.Artists, artists) {
				continue
			}
			match := result
			return &match, nil
		}
	}

	return nil, nil
}

// artistsOverlap reports whether any queried artist is a case-insensitive
// prefix of any candidate artist.
func artistsOverlap(candidates, queried []string) bool {
	for _, q := range queried {
		for _, c := range candidates {
			if hasFoldPrefix(c, q) {
				return true
			}
		}
	}
	return false
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

var nonWordChars = regexp.MustCompile(`[^a-z0-9 ]`)

// SplitWords tokenizes text into a set of unique lower-cased alphanumeric
// words.
func SplitWords(text string) []string {
	sanitized := nonWordChars.ReplaceAllString(strings.ToLower(text), "")

	seen := make(map[string]bool)
	var words []string
	for _, word := range strings.Fields(sanitized) {
		if !seen[word] {
			seen[word] = true
			words = append(words, word)
		}
	}
	return words
}

// containsExactWords reports whether every queried word appears somewhere in
// text, order-independent.
func containsExactWords(text string, words []string) bool {
	textWords := make(map[string]bool)
	for _, w := range SplitWords(text) {
		textWords[w] = true
	}
	for _, w := range words {
		if !textWords[w] {
			return false
		}
	}
	return true
}

// WordDistance scores a candidate title against a query for ranked fuzzy
// search. Titles containing every query word score by length difference
// (closer length wins); all others score math.MaxInt so they sort last.
func WordDistance(title string, queryWords []string, queryLength int) int {
	if containsExactWords(title, queryWords) {
		d := len(title) - queryLength
		if d < 0 {
			d = -d
		}
		return d
	}
	return math.MaxInt
}

// SortByDistance orders candidates by ascending distance, breaking ties on
// title for deterministic output.
func SortByDistance(albums []Album, distances []int) {
	sort.Sort(&distanceSorter{albums: albums, distances: distances})
}

type distanceSorter struct {
	albums    []Album
	distances []int
}

func (s *distanceSorter) Len() int { return len(s.albums) }

func (s *distanceSorter) Less(i, j int) bool {
	if s.distances[i] != s.distances[j] {
		return s.distances[i] < s.distances[j]
	}
	return s.albums[i].Title < s.albums[j].Title
}

func (s *distanceSorter) Swap(i, j int) {
	s.albums[i], s.albums[j] = s.albums[j], s.albums[i]
	s.distances[i], s.distances[j] = s.distances[j], s.distances[i]
}

// RankByDistance filters and orders candidates for a query using the
// superset-of-tokens eligibility rule and length-distance scoring.
func RankByDistance(query string, albums []Album) []Album {
	queryWords := SplitWords(query)
	queryLength := len(query)

	var ranked []Album
	var distances []int
	for _, album := range albums {
		distance := WordDistance(album.Title, queryWords, queryLength)
		if distance == math.MaxInt {
			continue
		}
		ranked = append(ranked, album)
		distances = append(distances, distance)
	}

	SortByDistance(ranked, distances)
	return ranked
}
