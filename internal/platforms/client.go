package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// queryJSON performs an HTTP request against a platform API and decodes the
// JSON response into result. Failures of any kind surface as *ProviderError;
// non-2xx responses carry the upstream status code.
func queryJSON(ctx context.Context, client *http.Client, method, rawURL string, headers map[string]string, body io.Reader, result any) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return &ProviderError{Message: "failed to create request", Err: err}
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderError{
			Message:    fmt.Sprintf("server responded with HTTP status code %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &ProviderError{Message: "an error has occurred while parsing search results", Err: err}
		}
	}

	return nil
}
