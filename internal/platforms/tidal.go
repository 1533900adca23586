// Tidal adapter, backed by the v2 open API.
//
// Search is a two-phase call: the searchResults endpoint yields streamable
// album ids and titles, then a batched albums request resolves artists and
// cover art. Results are ranked with the shared distance sorter because the
// endpoint does plain substring matching.
package platforms

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	tidalTokenURL     = "https://auth.tidal.com/v1/oauth2/token"
	tidalSearchURL    = "https://openapi.tidal.com/v2/searchResults/"
	tidalAlbumsURL    = "https://openapi.tidal.com/v2/albums"
	tidalLookupURL    = "https://tidal.com/album/"
	tidalCountryCode  = "US"
	tidalAvailability = "STREAM"
)

// TidalHelper implements [Helper] and [DetailsProvider] for the Tidal
// catalog.
type TidalHelper struct {
	creds      shared.ClientCredentialsConfig
	tokens     *TokenCache
	httpClient *http.Client

	searchURL string
	albumsURL string
	tokenURL  string
}

func NewTidalHelper(creds shared.ClientCredentialsConfig, tokens *TokenCache, client *http.Client) *TidalHelper {
	if client == nil {
		client = http.DefaultClient
	}
	return &TidalHelper{
		creds:      creds,
		tokens:     tokens,
		httpClient: client,
		searchURL:  tidalSearchURL,
		albumsURL:  tidalAlbumsURL,
		tokenURL:   tidalTokenURL,
	}
}

func (h *TidalHelper) Platform() Platform {
	return Tidal
}

func (h *TidalHelper) LookupURL(platformID string) string {
	return tidalLookupURL + platformID
}

func (h *TidalHelper) fetchToken(ctx context.Context) (string, time.Duration, error) {
	conf := &clientcredentials.Config{
		ClientID:     h.creds.ClientID,
		ClientSecret: h.creds.ClientSecret,
		TokenURL:     h.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
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

func (h *TidalHelper) queryAPI(ctx context.Context, rawURL string, params url.Values, result any) error {
	token, err := h.tokens.Token(ctx, Tidal, h.fetchToken)
	if err != nil {
		return &ProviderError{Message: err.Error(), Err: err}
	}

	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	return queryJSON(ctx, h.httpClient, http.MethodGet, rawURL, headers, nil, result)
}

type tidalIncluded struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Attributes struct {
		Title        string   `json:"title"`
		Name         string   `json:"name"`
		Availability []string `json:"availability"`
		Files        []struct {
			Href string `json:"href"`
		} `json:"files"`
	} `json:"attributes"`
}

type tidalRelationshipRefs struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type tidalAlbumData struct {
	ID            string `json:"id"`
	Relationships struct {
		CoverArt tidalRelationshipRefs `json:"coverArt"`
		Artists  tidalRelationshipRefs `json:"artists"`
	} `json:"relationships"`
}

func (h *TidalHelper) Search(ctx context.Context, query string, startAt int) ([]Album, error) {
	params := url.Values{
		"countryCode":    {tidalCountryCode},
		"explicitFilter": {"include,exclude"},
		"include":        {"albums"},
	}

	var searchResponse struct {
		Included []tidalIncluded `json:"included"`
	}
	if err := h.queryAPI(ctx, h.searchURL+url.PathEscape(query), params, &searchResponse); err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	var ids []string
	for _, entry := range searchResponse.Included {
		if entry.Type != "albums" && entry.Type != "" {
			continue
		}
		streamable := false
		for _, a := range entry.Attributes.Availability {
			if a == tidalAvailability {
				streamable = true
				break
			}
		}
		if streamable {
			titles[entry.ID] = entry.Attributes.Title
			ids = append(ids, entry.ID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	params = url.Values{
		"countryCode": {tidalCountryCode},
		"include":     {"coverArt", "artists"},
	}
	for _, id := range ids {
		params.Add("filter[id]", id)
	}

	var albumsResponse struct {
		Data     []tidalAlbumData `json:"data"`
		Included []tidalIncluded  `json:"included"`
	}
	if err := h.queryAPI(ctx, h.albumsURL, params, &albumsResponse); err != nil {
		return nil, err
	}

	results := make([]Album, 0, len(albumsResponse.Data))
	for _, data := range albumsResponse.Data {
		album := Album{Title: titles[data.ID], PlatformID: data.ID}

		artistIDs := make(map[string]bool)
		for _, ref := range data.Relationships.Artists.Data {
			artistIDs[ref.ID] = true
		}
		var coverArtID string
		if len(data.Relationships.CoverArt.Data) > 0 {
			coverArtID = data.Relationships.CoverArt.Data[0].ID
		}

		for _, included := range albumsResponse.Included {
			switch included.Type {
			case "artworks":
				if included.ID == coverArtID && len(included.Attributes.Files) > 0 {
					album.CoverURL = included.Attributes.Files[0].Href
				}
			case "artists":
				if artistIDs[included.ID] {
					album.Artists = append(album.Artists, included.Attributes.Name)
				}
			}
		}

		results = append(results, album)
	}

	return RankByDistance(query, results), nil
}

func (h *TidalHelper) SearchExactMatch(ctx context.Context, title string, artists []string) (*Album, error) {
	return SearchExactMatch(ctx, h, title, artists)
}

// AlbumDetails fetches a single album with artists and cover art resolved
// from the response's included resources.
func (h *TidalHelper) AlbumDetails(ctx context.Context, platformID string) (*Album, error) {
	params := url.Values{
		"countryCode": {tidalCountryCode},
		"include":     {"artists", "coverArt"},
	}

	var response struct {
		Data struct {
			Attributes struct {
				Title string `json:"title"`
			} `json:"attributes"`
		} `json:"data"`
		Included []tidalIncluded `json:"included"`
	}
	if err := h.queryAPI(ctx, h.albumsURL+"/"+platformID, params, &response); err != nil {
		return nil, err
	}

	album := &Album{Title: response.Data.Attributes.Title, PlatformID: platformID}
	for _, included := range response.Included {
		switch included.Type {
		case "artworks":
			if len(included.Attributes.Files) > 0 {
				album.CoverURL = included.Attributes.Files[0].Href
			}
		case "artists":
			album.Artists = append(album.Artists, included.Attributes.Name)
		}
	}
	return album, nil
}

func (h *TidalHelper) SupportsPagination() bool {
	return false
}

func (h *TidalHelper) NextPageStart() (int, bool) {
	return 0, false
}

func (h *TidalHelper) ResultsPerPage() int {
	return -1
}
