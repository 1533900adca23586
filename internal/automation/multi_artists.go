package automation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
)

// multiArtistsUpdater resolves the full artist list of albums recorded with
// a single artist, using a platform's album details endpoint. Processed
// albums are stamped with the multi_artists feature flag so reruns skip
// them.
type multiArtistsUpdater struct {
	baseAction
}

const multiArtistsFlag = "multi_artists"

func NewMultiArtistsUpdater(env *Env) Action {
	return &multiArtistsUpdater{
		baseAction: baseAction{
			env:         env,
			name:        "multi_artists_updater",
			displayName: "Multiple Artists Updater",
			cooldown:    time.Second,
		},
	}
}

func (a *multiArtistsUpdater) Options() []Option {
	return append(a.baseAction.Options(), Option{
		Name:     OptionPlatform,
		Type:     OptionSelect,
		Required: true,
		Choices: []Choice{
			{Value: string(platforms.AppleMusic), Label: platforms.AppleMusic.Label()},
			{Value: string(platforms.Deezer), Label: platforms.Deezer.Label()},
			{Value: string(platforms.Spotify), Label: platforms.Spotify.Label()},
		},
	})
}

type multiArtistsProgress struct {
	Platform     platforms.Platform `json:"platform"`
	CurrentIndex int                `json:"current_index"`
	AlbumIDs     []int64            `json:"album_ids"`
}

func (a *multiArtistsUpdater) SetUp(ctx context.Context, values OptionValues) error {
	platform := platforms.Platform(values.String(OptionPlatform))

	query := `SELECT id FROM albums
		WHERE instr(',' || feature_flags || ',', ?) = 0
		AND id IN (SELECT album_id FROM album_instances WHERE platform = ?)`
	args := []any{"," + multiArtistsFlag + ",", string(platform)}
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
	return a.saveProgress(ctx, &multiArtistsProgress{Platform: platform, AlbumIDs: albumIDs})
}

func (a *multiArtistsUpdater) ProceedWithNextStep(ctx context.Context) *StepData {
	var progress multiArtistsProgress
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
	if err := a.updateAlbum(ctx, progress.Platform, albumID, data); err != nil {
		return stepFailure(err)
	}

	progress.CurrentIndex++
	if err := a.saveProgress(ctx, &progress); err != nil {
		return stepFailure(err)
	}
	data.CurrentItemNumber = progress.CurrentIndex
	return data
}

func (a *multiArtistsUpdater) updateAlbum(ctx context.Context, platform platforms.Platform, albumID int64, data *StepData) error {
	var title, platformID string
	row := a.env.DB.QueryRowContext(ctx,
		`SELECT al.title, ai.platform_id FROM albums al
			INNER JOIN album_instances ai ON ai.album_id = al.id AND ai.platform = ?
			WHERE al.id = ?`, string(platform), albumID)
	if err := row.Scan(&title, &platformID); err != nil {
		return fmt.Errorf("unable to load album #%d: %w", albumID, err)
	}
	data.Log("Fetching artists for '%s' (album #%d)", title, albumID)

	helper, err := a.env.Helpers(platform)
	if err != nil {
		return err
	}
	details, ok := helper.(platforms.DetailsProvider)
	if !ok {
		return fmt.Errorf("platform '%s' does not expose album details", platform)
	}
	album, err := details.AlbumDetails(ctx, platformID)
	if err != nil {
		return err
	}

	tx, err := a.env.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := a.applyArtists(ctx, tx, albumID, album.Artists, data); err != nil {
		tx.Rollback()
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE albums SET feature_flags = TRIM(feature_flags || ?, ',') WHERE id = ?`,
		","+multiArtistsFlag, albumID)
	if err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// applyArtists replaces the album's secondary artist links with the fetched
// list, creating missing artist rows on the fly.
func (a *multiArtistsUpdater) applyArtists(ctx context.Context, tx *sql.Tx, albumID int64, names []string, data *StepData) error {
	if len(names) < 2 {
		data.Log("Single artist, nothing to update")
		return nil
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM album_artists WHERE album_id = ?", albumID); err != nil {
		return err
	}
	for order, name := range names {
		artistID, err := getOrCreateArtist(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO album_artists (album_id, artist_id, artist_order) VALUES (?, ?, ?)",
			albumID, artistID, order)
		if err != nil {
			return err
		}
	}
	data.Log("Recorded %d artists", len(names))
	return nil
}

func getOrCreateArtist(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM artists WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	result, err := tx.ExecContext(ctx, "INSERT INTO artists (name) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
