package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
)

const steamAppListURL = "https://api.steampowered.com/IStoreService/GetAppList/v1/"

// steamProductsUpdater refreshes the local mirror of the Steam catalog, one
// product category per pass. Each step pulls one page from the store
// service, resuming from the highest app id already fetched and skipping
// entries older than the previous sync.
type steamProductsUpdater struct {
	baseAction
	appListURL string
}

func NewSteamProductsUpdater(env *Env) Action {
	return &steamProductsUpdater{
		baseAction: baseAction{
			env:         env,
			name:        "steam_products_updater",
			displayName: "Steam Products Updater",
			cooldown:    2 * time.Second,
		},
		appListURL: steamAppListURL,
	}
}

// The product mirror has no per-album cursor to seed.
func (a *steamProductsUpdater) Options() []Option {
	return nil
}

type steamProductsProgress struct {
	TypeIndex     int              `json:"type_index"`
	LastAppID     int64            `json:"last_app_id"`
	ModifiedSince map[string]int64 `json:"modified_since"`
}

func (a *steamProductsUpdater) SetUp(ctx context.Context, _ OptionValues) error {
	// Resume timestamps come from the newest row of each category.
	rows, err := a.env.DB.QueryContext(ctx,
		"SELECT type, strftime('%s', MAX(last_update)) FROM steam_products GROUP BY type")
	if err != nil {
		return err
	}
	defer rows.Close()

	modifiedSince := make(map[string]int64)
	for rows.Next() {
		var productType string
		var since int64
		if err := rows.Scan(&productType, &since); err != nil {
			return err
		}
		modifiedSince[productType] = since
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return a.saveProgress(ctx, &steamProductsProgress{ModifiedSince: modifiedSince})
}

type steamAppListResponse struct {
	Response struct {
		Apps []struct {
			AppID        int64  `json:"appid"`
			Name         string `json:"name"`
			LastModified int64  `json:"last_modified"`
		} `json:"apps"`
		HaveMoreResults bool  `json:"have_more_results"`
		LastAppID       int64 `json:"last_appid"`
	} `json:"response"`
}

func (a *steamProductsUpdater) ProceedWithNextStep(ctx context.Context) *StepData {
	var progress steamProductsProgress
	if !a.loadProgress(ctx, &progress) {
		return lostSessionStep()
	}

	productTypes := platforms.SteamProductTypes()
	data := NewStepData()
	data.TotalItems = len(productTypes)
	data.CurrentItemNumber = progress.TypeIndex
	if progress.TypeIndex >= len(productTypes) {
		data.Status = StatusComplete
		return data
	}

	productType := productTypes[progress.TypeIndex]
	response, err := a.fetchPage(ctx, productType, &progress)
	if err != nil {
		return stepFailure(err)
	}
	if err := a.storeApps(ctx, productType, response, data); err != nil {
		return stepFailure(err)
	}

	if response.Response.HaveMoreResults {
		progress.LastAppID = response.Response.LastAppID
	} else {
		data.Log("Finished syncing %s products", productType)
		progress.TypeIndex++
		progress.LastAppID = 0
	}
	if err := a.saveProgress(ctx, &progress); err != nil {
		return stepFailure(err)
	}
	data.CurrentItemNumber = progress.TypeIndex
	return data
}

func (a *steamProductsUpdater) fetchPage(ctx context.Context, productType platforms.SteamProductType, progress *steamProductsProgress) (*steamAppListResponse, error) {
	params := url.Values{}
	params.Set("key", a.env.Config.Platforms.Steam.APIKey)
	params.Set("max_results", "50000")
	params.Set("include_games", boolFlag(productType == platforms.SteamProductGame))
	params.Set("include_dlc", boolFlag(productType == platforms.SteamProductDLC))
	params.Set("include_software", "false")
	params.Set("include_videos", "false")
	params.Set("include_hardware", "false")
	if progress.LastAppID > 0 {
		params.Set("last_appid", strconv.FormatInt(progress.LastAppID, 10))
	}
	if since, ok := progress.ModifiedSince[string(productType)]; ok && since > 0 {
		params.Set("if_modified_since", strconv.FormatInt(since, 10))
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, a.appListURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	response, err := a.httpClient().Do(request)
	if err != nil {
		return nil, &platforms.ProviderError{Message: "failed to query the Steam store service", Err: err}
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode > 299 {
		io.Copy(io.Discard, response.Body)
		return nil, &platforms.ProviderError{
			Message:    fmt.Sprintf("Steam store service responded with status %d", response.StatusCode),
			StatusCode: response.StatusCode,
		}
	}

	var parsed steamAppListResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return nil, &platforms.ProviderError{Message: "failed to decode the Steam store response", Err: err}
	}
	return &parsed, nil
}

func (a *steamProductsUpdater) storeApps(ctx context.Context, productType platforms.SteamProductType, response *steamAppListResponse, data *StepData) error {
	apps := response.Response.Apps
	if len(apps) == 0 {
		data.Log("No new %s products", productType)
		return nil
	}

	tx, err := a.env.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, app := range apps {
		_, err := tx.ExecContext(ctx, `INSERT INTO steam_products (app_id, name, type, last_update) VALUES (?, ?, ?, datetime(?, 'unixepoch'))
			ON CONFLICT(app_id) DO UPDATE SET name = excluded.name, type = excluded.type, last_update = excluded.last_update`,
			app.AppID, app.Name, string(productType), app.LastModified)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	data.Log("Stored %d %s products", len(apps), productType)
	return nil
}

func (a *steamProductsUpdater) httpClient() *http.Client {
	if a.env.HTTPClient != nil {
		return a.env.HTTPClient
	}
	return http.DefaultClient
}

func boolFlag(value bool) string {
	if value {
		return "true"
	}
	return "false"
}
