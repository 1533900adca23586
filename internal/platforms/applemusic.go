// Apple Music adapter.
//
// https://developer.apple.com/documentation/applemusicapi
package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

const (
	appleMusicSearchURL = "https://api.music.apple.com/v1/catalog/us/search"
	appleMusicAlbumURL  = "https://api.music.apple.com/v1/catalog/us/albums/"
	appleMusicLookupURL = "https://music.apple.com/album/"
)

// AppleMusicHelper implements [Helper] and [DetailsProvider] for the Apple
// Music catalog. Requests are authenticated with a short-lived ES256
// developer token signed locally, so no token cache is involved.
type AppleMusicHelper struct {
	config     shared.AppleMusicConfig
	httpClient *http.Client

	searchURL string
	albumURL  string

	nextPageIndex int
	hasNextPage   bool
}

func NewAppleMusicHelper(config shared.AppleMusicConfig, client *http.Client) *AppleMusicHelper {
	if client == nil {
		client = http.DefaultClient
	}
	return &AppleMusicHelper{
		config:     config,
		httpClient: client,
		searchURL:  appleMusicSearchURL,
		albumURL:   appleMusicAlbumURL,
	}
}

func (h *AppleMusicHelper) Platform() Platform {
	return AppleMusic
}

func (h *AppleMusicHelper) LookupURL(platformID string) string {
	return appleMusicLookupURL + platformID
}

// developerToken signs a one-hour JWT with the configured team key.
func (h *AppleMusicHelper) developerToken() (string, error) {
	keyBytes, err := os.ReadFile(h.config.KeyPath)
	if err != nil {
		return "", fmt.Errorf("unable to read Apple Music key: %w", err)
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return "", fmt.Errorf("unable to parse Apple Music key: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": h.config.TeamID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	token.Header["kid"] = h.config.KeyID

	return token.SignedString(key)
}

func (h *AppleMusicHelper) queryAPI(ctx context.Context, rawURL string, params url.Values, result any) error {
	token, err := h.developerToken()
	if err != nil {
		return &ProviderError{Message: err.Error(), Err: err}
	}

	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	return queryJSON(ctx, h.httpClient, http.MethodGet, rawURL, headers, nil, result)
}

type appleMusicAlbumData struct {
	ID         string `json:"id"`
	Attributes struct {
		Name       string `json:"name"`
		ArtistName string `json:"artistName"`
		Artwork    struct {
			URL string `json:"url"`
		} `json:"artwork"`
	} `json:"attributes"`
	Relationships struct {
		Artists struct {
			Data []struct {
				Type       string `json:"type"`
				Attributes struct {
					Name string `json:"name"`
				} `json:"attributes"`
			} `json:"data"`
		} `json:"artists"`
	} `json:"relationships"`
}

// appleMusicArtworkURL resolves the {w}x{h} placeholders in an artwork URL
// template.
func appleMusicArtworkURL(template string) string {
	replaced := strings.ReplaceAll(template, "{w}", "1000")
	return strings.ReplaceAll(replaced, "{h}", "1000")
}

func (h *AppleMusicHelper) Search(ctx context.Context, query string, startAt int) ([]Album, error) {
	params := url.Values{
		"term":   {query},
		"limit":  {strconv.Itoa(h.ResultsPerPage())},
		"offset": {strconv.Itoa(startAt)},
		"types":  {"albums"},
	}

	var response struct {
		Results struct {
			Albums struct {
				Data []appleMusicAlbumData `json:"data"`
				Next *string               `json:"next"`
			} `json:"albums"`
		} `json:"results"`
	}
	if err := h.queryAPI(ctx, h.searchURL, params, &response); err != nil {
		return nil, err
	}

	h.hasNextPage = false
	if response.Results.Albums.Next != nil {
		if offset, ok := parsePageOffset(*response.Results.Albums.Next, "offset"); ok {
			h.nextPageIndex = offset
			h.hasNextPage = true
		}
	}

	results := make([]Album, 0, len(response.Results.Albums.Data))
	for _, entry := range response.Results.Albums.Data {
		results = append(results, Album{
			Title:      entry.Attributes.Name,
			PlatformID: entry.ID,
			Artists:    []string{entry.Attributes.ArtistName},
			CoverURL:   appleMusicArtworkURL(entry.Attributes.Artwork.URL),
		})
	}
	return results, nil
}

// SearchExactMatch overrides the shared pipeline's artist test: Apple Music
// joins collaborating artists into a single display name, so the candidate's
// artist is compared against the queried artists joined with " & ".
func (h *AppleMusicHelper) SearchExactMatch(ctx context.Context, title string, artists []string) (*Album, error) {
	query := title
	for _, re := range cleanupPasses {
		if re != nil {
			query = strings.TrimSpace(re.ReplaceAllString(query, ""))
		}
		if query == "" {
			continue
		}

		results, err := h.Search(ctx, query, 0)
		if err != nil {
			return nil, err
		}

		joinedArtists := strings.Join(artists, " & ")
		for _, result := range results {
			if !hasFoldPrefix(result.Title, query) {
				continue
			}
			if len(artists) > 0 {
				if len(result.Artists) == 0 || !strings.EqualFold(result.Artists[0], joinedArtists) {
					continue
				}
			}
			match := result
			return &match, nil
		}
	}

	return nil, nil
}

// AlbumDetails fetches a single album with its full artist relationships.
func (h *AppleMusicHelper) AlbumDetails(ctx context.Context, platformID string) (*Album, error) {
	var response struct {
		Data []appleMusicAlbumData `json:"data"`
	}
	if err := h.queryAPI(ctx, h.albumURL+platformID, url.Values{"include": {"artists"}}, &response); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, nil
	}

	entry := response.Data[0]
	album := &Album{
		Title:      entry.Attributes.Name,
		PlatformID: platformID,
		CoverURL:   appleMusicArtworkURL(entry.Attributes.Artwork.URL),
	}
	for _, artist := range entry.Relationships.Artists.Data {
		if artist.Type == "artists" {
			album.Artists = append(album.Artists, artist.Attributes.Name)
		}
	}
	return album, nil
}

func (h *AppleMusicHelper) SupportsPagination() bool {
	return true
}

func (h *AppleMusicHelper) NextPageStart() (int, bool) {
	return h.nextPageIndex, h.hasNextPage
}

func (h *AppleMusicHelper) ResultsPerPage() int {
	return 25
}
