package platforms

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// HelperFactory resolves a platform to its adapter. Injected into the
// automation layer so tests can substitute fakes.
type HelperFactory func(platform Platform) (Helper, error)

// Factory builds platform adapters from shared collaborators.
type Factory struct {
	db         *sql.DB
	config     *shared.Config
	tokens     *TokenCache
	httpClient *http.Client
}

func NewFactory(db *sql.DB, config *shared.Config, client *http.Client) *Factory {
	if client == nil {
		client = http.DefaultClient
	}
	return &Factory{
		db:         db,
		config:     config,
		tokens:     NewTokenCache(db),
		httpClient: client,
	}
}

// Helper returns the adapter for the requested platform. Platforms whose
// API needs credentials fail fast when the configuration lacks them.
func (f *Factory) Helper(platform Platform) (Helper, error) {
	switch platform {
	case AppleMusic:
		creds := f.config.Platforms.AppleMusic
		if creds.KeyID == "" || creds.KeyPath == "" || creds.TeamID == "" {
			return nil, fmt.Errorf("%w for %s", shared.ErrMissingCredentials, platform)
		}
		return NewAppleMusicHelper(creds, f.httpClient), nil
	case Bandcamp:
		return NewBandcampHelper(f.httpClient), nil
	case Deezer:
		return NewDeezerHelper(f.httpClient), nil
	case Spotify:
		if err := checkClientCredentials(platform, f.config.Platforms.Spotify); err != nil {
			return nil, err
		}
		return NewSpotifyHelper(f.config.Platforms.Spotify, f.tokens, f.httpClient), nil
	case SteamGame:
		return NewSteamGameHelper(f.db), nil
	case SteamSoundtrack:
		return NewSteamSoundtrackHelper(f.db), nil
	case Tidal:
		if err := checkClientCredentials(platform, f.config.Platforms.Tidal); err != nil {
			return nil, err
		}
		return NewTidalHelper(f.config.Platforms.Tidal, f.tokens, f.httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedPlatform, platform)
	}
}

func checkClientCredentials(platform Platform, creds shared.ClientCredentialsConfig) error {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w for %s", shared.ErrMissingCredentials, platform)
	}
	return nil
}
