// Steam adapters, backed by the locally synced steam_products table rather
// than a network API. The product list is refreshed by the Steam products
// automated action; search here is a substring scan ranked with the shared
// distance sorter.
package platforms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	steamLookupURL  = "https://store.steampowered.com/app/"
	steamCapsuleURL = "https://shared.cloudflare.steamstatic.com/store_item_assets/steam/apps/%s/header.jpg?t=%d"
)

// SteamProductType categorizes entries of the steam_products table.
type SteamProductType string

const (
	SteamProductGame  SteamProductType = "game"
	SteamProductDLC   SteamProductType = "dlc"
	SteamProductOther SteamProductType = "other"
)

// SteamProductTypes lists all product categories in sync order.
func SteamProductTypes() []SteamProductType {
	return []SteamProductType{SteamProductGame, SteamProductDLC, SteamProductOther}
}

// steamHelper is the shared implementation behind the game and soundtrack
// variants, which differ only in platform identity and product-type filter.
type steamHelper struct {
	db       *sql.DB
	platform Platform
	types    []SteamProductType
}

// SteamGameHelper matches albums against Steam games and DLC.
type SteamGameHelper struct{ steamHelper }

// SteamSoundtrackHelper matches albums against standalone Steam soundtrack
// products.
type SteamSoundtrackHelper struct{ steamHelper }

func NewSteamGameHelper(db *sql.DB) *SteamGameHelper {
	return &SteamGameHelper{steamHelper{
		db:       db,
		platform: SteamGame,
		types:    []SteamProductType{SteamProductGame, SteamProductDLC},
	}}
}

func NewSteamSoundtrackHelper(db *sql.DB) *SteamSoundtrackHelper {
	return &SteamSoundtrackHelper{steamHelper{
		db:       db,
		platform: SteamSoundtrack,
		types:    []SteamProductType{SteamProductOther},
	}}
}

func (h *steamHelper) Platform() Platform {
	return h.platform
}

func (h *steamHelper) LookupURL(platformID string) string {
	return steamLookupURL + platformID
}

func (h *steamHelper) coverURL(platformID string) string {
	return fmt.Sprintf(steamCapsuleURL, platformID, time.Now().Unix())
}

func (h *steamHelper) Search(ctx context.Context, query string, startAt int) ([]Album, error) {
	marks := make([]string, len(h.types))
	args := []any{"%" + query + "%"}
	for i, t := range h.types {
		marks[i] = "?"
		args = append(args, string(t))
	}

	rows, err := h.db.QueryContext(ctx,
		fmt.Sprintf("SELECT app_id, name FROM steam_products WHERE name LIKE ? AND type IN (%s)", strings.Join(marks, ",")),
		args...)
	if err != nil {
		return nil, &ProviderError{Message: "a database error has occurred", Err: err}
	}
	defer rows.Close()

	var results []Album
	for rows.Next() {
		var appID int64
		var name string
		if err := rows.Scan(&appID, &name); err != nil {
			return nil, &ProviderError{Message: "a database error has occurred", Err: err}
		}
		id := fmt.Sprintf("%d", appID)
		results = append(results, Album{
			Title:      name,
			PlatformID: id,
			Artists:    []string{"n/a"},
			CoverURL:   h.coverURL(id),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &ProviderError{Message: "a database error has occurred", Err: err}
	}

	return RankByDistance(query, results), nil
}

// SearchExactMatch compares cleaned-up titles for equality instead of the
// shared prefix test: game names never embed artist information, and
// soundtrack products carry decorations ("Original Soundtrack", "OST") that
// the cleanup passes strip from both sides.
func (h *steamHelper) SearchExactMatch(ctx context.Context, title string, artists []string) (*Album, error) {
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

		for _, result := range results {
			if strings.EqualFold(CleanTitle(result.Title), query) {
				match := result
				return &match, nil
			}
		}
	}

	return nil, nil
}

func (h *steamHelper) SupportsPagination() bool {
	return false
}

func (h *steamHelper) NextPageStart() (int, bool) {
	return 0, false
}

func (h *steamHelper) ResultsPerPage() int {
	return -1
}
