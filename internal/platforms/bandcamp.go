// Bandcamp adapter, backed by the public autocomplete search API.
//
// Bandcamp has no stable numeric album URL scheme, so platform identifiers
// are stored as "<id>|<item_url_path>" and the lookup URL is the second
// chunk.
package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const bandcampSearchURL = "https://bandcamp.com/api/bcsearch_public_api/1/autocomplete_elastic"

// BandcampHelper implements [Helper] for the Bandcamp catalog.
type BandcampHelper struct {
	httpClient *http.Client
	searchURL  string
}

func NewBandcampHelper(client *http.Client) *BandcampHelper {
	if client == nil {
		client = http.DefaultClient
	}
	return &BandcampHelper{httpClient: client, searchURL: bandcampSearchURL}
}

func (h *BandcampHelper) Platform() Platform {
	return Bandcamp
}

func (h *BandcampHelper) LookupURL(platformID string) string {
	chunks := strings.SplitN(platformID, "|", 2)
	if len(chunks) == 2 {
		return chunks[1]
	}
	return platformID
}

func (h *BandcampHelper) Search(ctx context.Context, query string, startAt int) ([]Album, error) {
	payload, err := json.Marshal(map[string]any{
		"search_text":   query,
		"fan_id":        nil,
		"full_page":     false,
		"search_filter": "a",
	})
	if err != nil {
		return nil, &ProviderError{Message: "failed to encode search payload", Err: err}
	}

	var response struct {
		Auto struct {
			Results []struct {
				ID          json.Number `json:"id"`
				Name        string      `json:"name"`
				BandName    string      `json:"band_name"`
				Img         string      `json:"img"`
				ItemURLPath string      `json:"item_url_path"`
			} `json:"results"`
		} `json:"auto"`
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if err := queryJSON(ctx, h.httpClient, http.MethodPost, h.searchURL, headers, bytes.NewReader(payload), &response); err != nil {
		return nil, err
	}

	results := make([]Album, 0, len(response.Auto.Results))
	for _, entry := range response.Auto.Results {
		results = append(results, Album{
			Title:      entry.Name,
			PlatformID: fmt.Sprintf("%s|%s", entry.ID.String(), entry.ItemURLPath),
			Artists:    []string{entry.BandName},
			CoverURL:   bandcampCoverURL(entry.Img),
		})
	}
	return results, nil
}

// bandcampCoverURL rewrites a thumbnail URL to its large-art variant by
// prefixing the filename with "a".
func bandcampCoverURL(imgURL string) string {
	parsed, err := url.Parse(imgURL)
	if err != nil || parsed.Host == "" {
		return imgURL
	}
	dir, file := path.Split(parsed.Path)
	return fmt.Sprintf("%s://%s%sa%s", parsed.Scheme, parsed.Host, dir, file)
}

func (h *BandcampHelper) SearchExactMatch(ctx context.Context, title string, artists []string) (*Album, error) {
	return SearchExactMatch(ctx, h, title, artists)
}

func (h *BandcampHelper) SupportsPagination() bool {
	return false
}

func (h *BandcampHelper) NextPageStart() (int, bool) {
	return 0, false
}

func (h *BandcampHelper) ResultsPerPage() int {
	return -1
}
