// package platforms implements per-platform catalog adapters for the
// external services the dashboard cross-references albums against.
//
// Each adapter exposes search and optional detail/availability lookups behind
// the [Helper] interface. Matching logic shared by all adapters lives in
// match.go.
package platforms

import (
	"context"
	"fmt"
)

// Platform identifies one external catalog.
type Platform string

const (
	AppleMusic      Platform = "apple_music"
	Bandcamp        Platform = "bandcamp"
	Deezer          Platform = "deezer"
	Spotify         Platform = "spotify"
	SteamGame       Platform = "steam_game"
	SteamSoundtrack Platform = "steam_soundtrack"
	Tidal           Platform = "tidal"
)

var platformLabels = map[Platform]string{
	AppleMusic:      "Apple Music",
	Bandcamp:        "Bandcamp",
	Deezer:          "Deezer",
	Spotify:         "Spotify",
	SteamGame:       "Steam (game)",
	SteamSoundtrack: "Steam (soundtrack)",
	Tidal:           "Tidal",
}

// All returns every supported platform in stable order.
func All() []Platform {
	return []Platform{AppleMusic, Bandcamp, Deezer, Spotify, SteamGame, SteamSoundtrack, Tidal}
}

// Label returns the human-readable name for the platform.
func (p Platform) Label() string {
	if label, ok := platformLabels[p]; ok {
		return label
	}
	return string(p)
}

// Valid reports whether p is one of the supported platforms.
func (p Platform) Valid() bool {
	_, ok := platformLabels[p]
	return ok
}

// Availability describes whether an album is still reachable on a platform.
type Availability string

const (
	Available    Availability = "available"
	NotAvailable Availability = "not_available"
	Unknown      Availability = "unknown"
)

// Album is a transient search candidate returned by an adapter. It is never
// persisted by this package.
type Album struct {
	Title            string
	PlatformID       string
	Artists          []string
	CoverURL         string
	ExistsInDatabase bool
}

// ProviderError reports a transport or API failure from an external platform.
// StatusCode carries the upstream HTTP status when one was received, 0
// otherwise.
type ProviderError struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Helper is the adapter contract implemented once per platform.
//
// Search returns an empty slice for zero results; errors are reserved for
// transport or API failures. startAt is the pagination offset, 0 for the
// first page.
type Helper interface {
	Platform() Platform
	LookupURL(platformID string) string

	Search(ctx context.Context, query string, startAt int) ([]Album, error)
	SearchExactMatch(ctx context.Context, title string, artists []string) (*Album, error)

	SupportsPagination() bool
	NextPageStart() (int, bool)
	ResultsPerPage() int
}

// DetailsProvider is implemented by adapters that can fetch a single album by
// its platform identifier. Adapters backed by static catalogs omit it.
type DetailsProvider interface {
	AlbumDetails(ctx context.Context, platformID string) (*Album, error)
}

// AvailabilityChecker is implemented by adapters that can report whether an
// album is still purchasable/streamable.
type AvailabilityChecker interface {
	AlbumAvailability(ctx context.Context, platformID string) (Availability, error)
}
