package automation

import (
	"context"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
)

// steamUpdater backfills Steam links against the local product mirror. Each
// album missing a steam_game link is matched against games and DLCs, and
// each album missing a steam_soundtrack link against the remaining products.
// Both passes run in one job, games first; an album queued for the game pass
// is not queued again for soundtracks, so a fresh album gets at most one
// attempt per run.
type steamUpdater struct {
	baseAction
}

func NewSteamUpdater(env *Env) Action {
	return &steamUpdater{
		baseAction: baseAction{
			env:         env,
			name:        "steam_database_updater",
			displayName: "Steam Database Updater",
			cooldown:    250 * time.Millisecond,
		},
	}
}

type steamWorkItem struct {
	AlbumID  int64              `json:"album_id"`
	Platform platforms.Platform `json:"platform"`
}

type steamUpdaterProgress struct {
	CurrentIndex int             `json:"current_index"`
	Items        []steamWorkItem `json:"items"`
}

func (a *steamUpdater) SetUp(ctx context.Context, values OptionValues) error {
	var items []steamWorkItem
	queued := make(map[int64]bool)
	for _, platform := range []platforms.Platform{platforms.SteamGame, platforms.SteamSoundtrack} {
		query := `SELECT id FROM albums WHERE id NOT IN (SELECT album_id FROM album_instances WHERE platform = ?)`
		args := []any{string(platform)}
		if firstID := values.Int(OptionFirstID); firstID > 0 {
			query += " AND id >= ?"
			args = append(args, firstID)
		}
		query += " ORDER BY id"
		if limit := values.Int(OptionLimit); limit > 0 {
			query += " LIMIT ?"
			args = append(args, limit)
		}
		albumIDs, err := collectIDs(ctx, a.env, query, args...)
		if err != nil {
			return err
		}
		for _, albumID := range albumIDs {
			if queued[albumID] {
				continue
			}
			queued[albumID] = true
			items = append(items, steamWorkItem{AlbumID: albumID, Platform: platform})
		}
	}
	return a.saveProgress(ctx, &steamUpdaterProgress{Items: items})
}

func (a *steamUpdater) ProceedWithNextStep(ctx context.Context) *StepData {
	var progress steamUpdaterProgress
	if !a.loadProgress(ctx, &progress) {
		return lostSessionStep()
	}

	data := NewStepData()
	data.TotalItems = len(progress.Items)
	data.CurrentItemNumber = progress.CurrentIndex
	if progress.CurrentIndex >= len(progress.Items) {
		data.Status = StatusComplete
		return data
	}

	item := progress.Items[progress.CurrentIndex]
	title, artists, err := loadAlbumInfo(ctx, a.env, item.AlbumID)
	if err != nil {
		return stepFailure(err)
	}
	data.Log("Looking up '%s' on %s (album #%d)", title, item.Platform.Label(), item.AlbumID)

	helper, err := a.env.Helpers(item.Platform)
	if err != nil {
		return stepFailure(err)
	}
	match, err := helper.SearchExactMatch(ctx, title, artists)
	if err != nil {
		return stepFailure(err)
	}
	if match == nil {
		data.LogAs(LogWarning, "No match found")
	} else {
		tx, err := a.env.DB.BeginTx(ctx, nil)
		if err != nil {
			return stepFailure(err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO album_instances (album_id, platform, platform_id) VALUES (?, ?, ?)
			ON CONFLICT(album_id, platform) DO UPDATE SET platform_id = excluded.platform_id`,
			item.AlbumID, string(item.Platform), match.PlatformID)
		if err != nil {
			tx.Rollback()
			return stepFailure(err)
		}
		if err := tx.Commit(); err != nil {
			return stepFailure(err)
		}
		data.Log("Matched '%s' (app %s)", match.Title, match.PlatformID)
	}

	progress.CurrentIndex++
	if err := a.saveProgress(ctx, &progress); err != nil {
		return stepFailure(err)
	}
	data.CurrentItemNumber = progress.CurrentIndex
	return data
}
