// Spotify adapter, backed by the Web API client-credentials flow.
//
// https://developer.spotify.com/documentation/web-api/reference/
package platforms

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifyBaseURL   = "https://api.spotify.com/v1"
	spotifyLookupURL = "https://open.spotify.com/album/"
)

type spotifyAlbum struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func (a spotifyAlbum) toAlbum() Album {
	album := Album{Title: a.Name, PlatformID: a.ID}
	for _, artist := range a.Artists {
		album.Artists = append(album.Artists, artist.Name)
	}
	if len(a.Images) > 0 {
		album.CoverURL = a.Images[0].URL
	}
	return album
}

// SpotifyHelper implements [Helper] and [DetailsProvider] for the Spotify
// catalog.
type SpotifyHelper struct {
	creds      shared.ClientCredentialsConfig
	tokens     *TokenCache
	httpClient *http.Client

	baseURL  string
	tokenURL string

	nextPageStart int
	hasNextPage   bool
}

func NewSpotifyHelper(creds shared.ClientCredentialsConfig, tokens *TokenCache, client *http.Client) *SpotifyHelper {
	if client == nil {
		client = http.DefaultClient
	}
	return &SpotifyHelper{
		creds:      creds,
		tokens:     tokens,
		httpClient: client,
		baseURL:    spotifyBaseURL,
		tokenURL:   spotifyTokenURL,
	}
}

func (h *SpotifyHelper) Platform() Platform {
	return Spotify
}

func (h *SpotifyHelper) LookupURL(platformID string) string {
	return spotifyLookupURL + platformID
}

func (h *SpotifyHelper) fetchToken(ctx context.Context) (string, time.Duration, error) {
	conf := &clientcredentials.Config{
		ClientID:     h.creds.ClientID,
		ClientSecret: h.creds.ClientSecret,
		TokenURL:     h.tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	token, err := conf.Token(context.WithValue(ctx, oauth2.HTTPClient, h.httpClient))
	if err != nil {
		return "", 0, err
	}

	expiresIn := time.Until(token.Expiry)
	if token.Expiry.IsZero() || expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return token.AccessToken, expiresIn, nil
}

func (h *SpotifyHelper) queryAPI(ctx context.Context, endpoint string, params url.Values, result any) error {
	token, err := h.tokens.Token(ctx, Spotify, h.fetchToken)
	if err != nil {
		return &ProviderError{Message: err.Error(), Err: err}
	}

	apiURL := h.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	headers := map[string]string{"Authorization": "Bearer " + token}
	return queryJSON(ctx, h.httpClient, http.MethodGet, apiURL, headers, nil, result)
}

// Search queries the album catalog. The US market is used so that
// availability matches the dashboard's reference storefront.
func (h *SpotifyHelper) Search(ctx context.Context, query string, startAt int) ([]Album, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ProviderError{Message: shared.ErrEmptyQuery.Error(), Err: shared.ErrEmptyQuery}
	}

	params := url.Values{
		"q":      {query},
		"type":   {"album"},
		"market": {"US"},
		"limit":  {strconv.Itoa(h.ResultsPerPage())},
		"offset": {strconv.Itoa(startAt)},
	}

	var response struct {
		Albums struct {
			Items []spotifyAlbum `json:"items"`
			Next  *string        `json:"next"`
		} `json:"albums"`
	}
	if err := h.queryAPI(ctx, "/search", params, &response); err != nil {
		return nil, err
	}

	h.hasNextPage = false
	if response.Albums.Next != nil {
		if offset, ok := parsePageOffset(*response.Albums.Next, "offset"); ok {
			h.nextPageStart = offset
			h.hasNextPage = true
		}
	}

	results := make([]Album, 0, len(response.Albums.Items))
	for _, item := range response.Albums.Items {
		results = append(results, item.toAlbum())
	}
	return results, nil
}

func (h *SpotifyHelper) SearchExactMatch(ctx context.Context, title string, artists []string) (*Album, error) {
	return SearchExactMatch(ctx, h, title, artists)
}

// AlbumDetails fetches a single album, including its full artist list.
func (h *SpotifyHelper) AlbumDetails(ctx context.Context, platformID string) (*Album, error) {
	var response spotifyAlbum
	if err := h.queryAPI(ctx, "/albums/"+platformID, nil, &response); err != nil {
		return nil, err
	}

	album := response.toAlbum()
	album.PlatformID = platformID
	return &album, nil
}

// AlbumAvailability checks whether the album is still served by the US
// storefront. A 404 means the album was pulled from the catalog.
func (h *SpotifyHelper) AlbumAvailability(ctx context.Context, platformID string) (Availability, error) {
	params := url.Values{"market": {"US"}}
	var response spotifyAlbum
	err := h.queryAPI(ctx, "/albums/"+platformID, params, &response)
	if err != nil {
		var providerErr *ProviderError
		if errors.As(err, &providerErr) && providerErr.StatusCode == http.StatusNotFound {
			return NotAvailable, nil
		}
		return Unknown, err
	}
	return Available, nil
}

func (h *SpotifyHelper) SupportsPagination() bool {
	return true
}

func (h *SpotifyHelper) NextPageStart() (int, bool) {
	return h.nextPageStart, h.hasNextPage
}

func (h *SpotifyHelper) ResultsPerPage() int {
	return 50
}

// parsePageOffset extracts a numeric pagination parameter from an absolute
// "next page" URL returned by an API.
func parsePageOffset(nextURL, param string) (int, bool) {
	parsed, err := url.Parse(nextURL)
	if err != nil {
		return 0, false
	}
	value := parsed.Query().Get(param)
	if value == "" {
		return 0, false
	}
	offset, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return offset, true
}
