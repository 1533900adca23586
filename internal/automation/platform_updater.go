package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// platformUpdater backfills missing platform links: for each album with no
// instance on the target platform, it runs an exact-match search and records
// the match when one is found. A miss is data, not an error, so unmatched
// albums simply advance the cursor.
type platformUpdater struct {
	baseAction
	platform platforms.Platform
}

// NewBandcampUpdater returns the link backfill action for Bandcamp.
func NewBandcampUpdater(env *Env) Action {
	return &platformUpdater{
		baseAction: baseAction{
			env:         env,
			name:        "bandcamp_database_updater",
			displayName: "Bandcamp Database Updater",
			cooldown:    time.Second,
		},
		platform: platforms.Bandcamp,
	}
}

// NewTidalUpdater returns the link backfill action for Tidal. Tidal
// throttles aggressively, hence the longer cooldown.
func NewTidalUpdater(env *Env) Action {
	return &platformUpdater{
		baseAction: baseAction{
			env:         env,
			name:        "tidal_database_updater",
			displayName: "Tidal Database Updater",
			cooldown:    5 * time.Second,
		},
		platform: platforms.Tidal,
	}
}

type platformUpdaterProgress struct {
	CurrentIndex int     `json:"current_index"`
	AlbumIDs     []int64 `json:"album_ids"`
}

func (a *platformUpdater) SetUp(ctx context.Context, values OptionValues) error {
	query := `SELECT id FROM albums WHERE id NOT IN (SELECT album_id FROM album_instances WHERE platform = ?)`
	args := []any{string(a.platform)}
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
	return a.saveProgress(ctx, &platformUpdaterProgress{AlbumIDs: albumIDs})
}

func (a *platformUpdater) ProceedWithNextStep(ctx context.Context) *StepData {
	var progress platformUpdaterProgress
	if !a.loadProgress(ctx, &progress) {
		return lostSessionStep()
	}

	data := NewStepData()
	data.TotalItems = len(progress.AlbumIDs)
	data.CurrentItemNumber = progress.CurrentIndex
	if progress.CurrentIndex >= len(progress.AlbumIDs) {
		data.Status = StatusComplete
		return data
	}

	albumID := progress.AlbumIDs[progress.CurrentIndex]
	title, artists, err := loadAlbumInfo(ctx, a.env, albumID)
	if err != nil {
		return stepFailure(err)
	}
	data.Log("Looking up '%s' by %s (album #%d)", title, artists[0], albumID)

	helper, err := a.env.Helpers(a.platform)
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
			albumID, string(a.platform), match.PlatformID)
		if err != nil {
			tx.Rollback()
			return stepFailure(err)
		}
		if err := tx.Commit(); err != nil {
			return stepFailure(err)
		}
		data.Log("Matched '%s' (%s)", match.Title, match.PlatformID)
	}

	progress.CurrentIndex++
	if err := a.saveProgress(ctx, &progress); err != nil {
		return stepFailure(err)
	}
	data.CurrentItemNumber = progress.CurrentIndex
	return data
}

// collectIDs runs a single-column query and gathers the resulting ids.
func collectIDs(ctx context.Context, env *Env, query string, args ...any) ([]int64, error) {
	rows, err := env.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// loadAlbumInfo fetches an album's title along with its artist names, main
// artist first.
func loadAlbumInfo(ctx context.Context, env *Env, albumID int64) (string, []string, error) {
	var title, mainArtist string
	row := env.DB.QueryRowContext(ctx,
		`SELECT al.title, ar.name FROM albums al INNER JOIN artists ar ON ar.id = al.artist_id WHERE al.id = ?`, albumID)
	if err := row.Scan(&title, &mainArtist); err != nil {
		return "", nil, fmt.Errorf("unable to load album #%d: %w", albumID, err)
	}

	artists := []string{mainArtist}
	rows, err := env.DB.QueryContext(ctx,
		`SELECT ar.name FROM album_artists aa INNER JOIN artists ar ON ar.id = aa.artist_id
			WHERE aa.album_id = ? AND ar.name != ? ORDER BY aa.artist_order`, albumID, mainArtist)
	if err != nil {
		return "", nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", nil, err
		}
		artists = append(artists, name)
	}
	return title, artists, rows.Err()
}

func lostSessionStep() *StepData {
	return FailedStep(0, fmt.Sprintf("%s: tear the action down and start over", shared.ErrLostSession))
}
