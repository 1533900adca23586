package automation

import (
	"context"
	"testing"

	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
	testhelpers "github.com/chsxf/vgtunes-dashboard/internal/testing"
)

func albumArtistNames(t *testing.T, env *Env, albumID int64) []string {
	t.Helper()
	rows, err := env.DB.Query(
		`SELECT ar.name FROM album_artists aa INNER JOIN artists ar ON ar.id = aa.artist_id
			WHERE aa.album_id = ? ORDER BY aa.artist_order`, albumID)
	if err != nil {
		t.Fatalf("artist query failed: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		names = append(names, name)
	}
	return names
}

func albumFeatureFlags(t *testing.T, env *Env, albumID int64) string {
	t.Helper()
	var flags string
	if err := env.DB.QueryRow("SELECT feature_flags FROM albums WHERE id = ?", albumID).Scan(&flags); err != nil {
		t.Fatalf("flags query failed: %v", err)
	}
	return flags
}

func TestMultiArtistsUpdater(t *testing.T) {
	ctx := context.Background()
	options := OptionValues{OptionPlatform: string(platforms.Spotify)}

	t.Run("rewrites the artist list and stamps the flag", func(t *testing.T) {
		helper := &testhelpers.FakeHelper{
			TargetPlatform: platforms.Spotify,
			Details: &platforms.Album{
				Title:      "Hades: Original Soundtrack",
				PlatformID: "sp1",
				Artists:    []string{"Darren Korb", "Ashley Barrett"},
			},
		}
		env, db := newTestEnv(t, helper)
		seedAlbum(t, db, 201, "Hades: Original Soundtrack", "Darren Korb")
		if _, err := db.Exec(
			"INSERT INTO album_instances (album_id, platform, platform_id) VALUES (201, 'spotify', 'sp1')"); err != nil {
			t.Fatalf("Failed to seed instance: %v", err)
		}

		updater := NewMultiArtistsUpdater(env)
		if err := updater.SetUp(ctx, options); err != nil {
			t.Fatalf("SetUp failed: %v", err)
		}

		data := updater.ProceedWithNextStep(ctx)
		if data.Status != StatusOK {
			t.Fatalf("expected ok step, got %q", data.Status)
		}
		if data := updater.ProceedWithNextStep(ctx); data.Status != StatusComplete {
			t.Fatalf("expected complete step, got %q", data.Status)
		}

		names := albumArtistNames(t, env, 201)
		if len(names) != 2 || names[0] != "Darren Korb" || names[1] != "Ashley Barrett" {
			t.Errorf("unexpected artist list %v", names)
		}
		if flags := albumFeatureFlags(t, env, 201); flags != multiArtistsFlag {
			t.Errorf("expected feature flag %q, got %q", multiArtistsFlag, flags)
		}
	})

	t.Run("single-artist albums keep their links but are still stamped", func(t *testing.T) {
		helper := &testhelpers.FakeHelper{
			TargetPlatform: platforms.Spotify,
			Details: &platforms.Album{
				Title:      "Celeste",
				PlatformID: "sp2",
				Artists:    []string{"Lena Raine"},
			},
		}
		env, db := newTestEnv(t, helper)
		seedAlbum(t, db, 202, "Celeste", "Lena Raine")
		if _, err := db.Exec(
			"INSERT INTO album_instances (album_id, platform, platform_id) VALUES (202, 'spotify', 'sp2')"); err != nil {
			t.Fatalf("Failed to seed instance: %v", err)
		}

		updater := NewMultiArtistsUpdater(env)
		if err := updater.SetUp(ctx, options); err != nil {
			t.Fatalf("SetUp failed: %v", err)
		}
		if data := updater.ProceedWithNextStep(ctx); data.Status != StatusOK {
			t.Fatalf("expected ok step, got %q", data.Status)
		}

		names := albumArtistNames(t, env, 202)
		if len(names) != 1 || names[0] != "Lena Raine" {
			t.Errorf("unexpected artist list %v", names)
		}
		if flags := albumFeatureFlags(t, env, 202); flags != multiArtistsFlag {
			t.Errorf("expected feature flag %q, got %q", multiArtistsFlag, flags)
		}
	})

	t.Run("stamped albums are skipped on the next run", func(t *testing.T) {
		helper := &testhelpers.FakeHelper{
			TargetPlatform: platforms.Spotify,
			Details: &platforms.Album{
				Title:      "Hades: Original Soundtrack",
				PlatformID: "sp1",
				Artists:    []string{"Darren Korb", "Ashley Barrett"},
			},
		}
		env, db := newTestEnv(t, helper)
		seedAlbum(t, db, 201, "Hades: Original Soundtrack", "Darren Korb")
		if _, err := db.Exec(
			"INSERT INTO album_instances (album_id, platform, platform_id) VALUES (201, 'spotify', 'sp1')"); err != nil {
			t.Fatalf("Failed to seed instance: %v", err)
		}

		updater := NewMultiArtistsUpdater(env)
		if err := updater.SetUp(ctx, options); err != nil {
			t.Fatalf("SetUp failed: %v", err)
		}
		if data := updater.ProceedWithNextStep(ctx); data.Status != StatusOK {
			t.Fatalf("expected ok step, got %q", data.Status)
		}
		updater.ShutDown(ctx)

		if err := updater.SetUp(ctx, options); err != nil {
			t.Fatalf("second SetUp failed: %v", err)
		}
		data := updater.ProceedWithNextStep(ctx)
		if data.Status != StatusComplete || data.TotalItems != 0 {
			t.Errorf("expected an immediately complete empty job, got %+v", data)
		}
	})
}
