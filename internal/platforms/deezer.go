// Deezer adapter. The search endpoint is public and needs no credentials.
package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

const (
	deezerSearchURL = "https://api.deezer.com/search/album"
	deezerAlbumURL  = "https://api.deezer.com/album/"
	deezerLookupURL = "https://www.deezer.com/fr/album/"
)

// DeezerHelper implements [Helper] for the Deezer catalog.
type DeezerHelper struct {
	httpClient *http.Client
	searchURL  string
	albumURL   string

	nextPageIndex int
	hasNextPage   bool
}

func NewDeezerHelper(client *http.Client) *DeezerHelper {
	if client == nil {
		client = http.DefaultClient
	}
	return &DeezerHelper{httpClient: client, searchURL: deezerSearchURL, albumURL: deezerAlbumURL}
}

func (h *DeezerHelper) Platform() Platform {
	return Deezer
}

func (h *DeezerHelper) LookupURL(platformID string) string {
	return deezerLookupURL + platformID
}

func (h *DeezerHelper) Search(ctx context.Context, query string, startAt int) ([]Album, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &ProviderError{Message: shared.ErrEmptyQuery.Error(), Err: shared.ErrEmptyQuery}
	}

	params := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(h.ResultsPerPage())},
		"index": {strconv.Itoa(startAt)},
	}

	var response struct {
		Data []struct {
			ID     json.Number `json:"id"`
			Title  string      `json:"title"`
			Artist struct {
				Name string `json:"name"`
			} `json:"artist"`
			CoverXL string `json:"cover_xl"`
		} `json:"data"`
		Next *string `json:"next"`
	}
	if err := queryJSON(ctx, h.httpClient, http.MethodGet, h.searchURL+"?"+params.Encode(), nil, nil, &response); err != nil {
		return nil, err
	}

	h.hasNextPage = false
	if response.Next != nil {
		if index, ok := parsePageOffset(*response.Next, "index"); ok {
			h.nextPageIndex = index
			h.hasNextPage = true
		}
	}

	results := make([]Album, 0, len(response.Data))
	for _, entry := range response.Data {
		results = append(results, Album{
			Title:      entry.Title,
			PlatformID: entry.ID.String(),
			Artists:    []string{entry.Artist.Name},
			CoverURL:   entry.CoverXL,
		})
	}
	return results, nil
}

func (h *DeezerHelper) SearchExactMatch(ctx context.Context, title string, artists []string) (*Album, error) {
	return SearchExactMatch(ctx, h, title, artists)
}

// AlbumAvailability probes the album endpoint. Deezer reports removed
// albums through an error payload rather than an HTTP status.
func (h *DeezerHelper) AlbumAvailability(ctx context.Context, platformID string) (Availability, error) {
	var response struct {
		ID    json.Number `json:"id"`
		Error *struct {
			Code int `json:"code"`
		} `json:"error"`
	}
	err := queryJSON(ctx, h.httpClient, http.MethodGet, h.albumURL+url.PathEscape(platformID), nil, nil, &response)
	if err != nil {
		var providerErr *ProviderError
		if errors.As(err, &providerErr) && providerErr.StatusCode == http.StatusNotFound {
			return NotAvailable, nil
		}
		return Unknown, err
	}
	if response.Error != nil {
		return NotAvailable, nil
	}
	return Available, nil
}

func (h *DeezerHelper) SupportsPagination() bool {
	return true
}

func (h *DeezerHelper) NextPageStart() (int, bool) {
	return h.nextPageIndex, h.hasNextPage
}

func (h *DeezerHelper) ResultsPerPage() int {
	return 100
}
