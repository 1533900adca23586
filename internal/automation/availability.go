package automation

import (
	"context"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/platforms"
)

// availabilityChecker re-verifies recorded platform links. Instances whose
// availability is unknown, or whose last check is older than a month, are
// probed again on every platform whose adapter can report availability.
type availabilityChecker struct {
	baseAction
}

func NewAvailabilityChecker(env *Env) Action {
	return &availabilityChecker{
		baseAction: baseAction{
			env:         env,
			name:        "check_album_availability",
			displayName: "Check Album Availability",
			cooldown:    time.Second,
		},
	}
}

type availabilityWorkItem struct {
	AlbumID    int64              `json:"album_id"`
	Platform   platforms.Platform `json:"platform"`
	PlatformID string             `json:"platform_id"`
}

type availabilityProgress struct {
	CurrentIndex int                    `json:"current_index"`
	Items        []availabilityWorkItem `json:"items"`
}

// checkablePlatforms lists the platforms whose adapter implements
// [platforms.AvailabilityChecker]. Platforms without credentials are
// skipped, not treated as errors.
func (a *availabilityChecker) checkablePlatforms() []platforms.Platform {
	var checkable []platforms.Platform
	for _, platform := range platforms.All() {
		helper, err := a.env.Helpers(platform)
		if err != nil {
			continue
		}
		if _, ok := helper.(platforms.AvailabilityChecker); ok {
			checkable = append(checkable, platform)
		}
	}
	return checkable
}

func (a *availabilityChecker) SetUp(ctx context.Context, values OptionValues) error {
	checkable := a.checkablePlatforms()

	query := `SELECT album_id, platform, platform_id FROM album_instances
		WHERE platform IN (` + placeholders(len(checkable)) + `)
		AND (availability = 'unknown' OR last_availability_check IS NULL
			OR last_availability_check < datetime('now', '-1 month'))`
	args := make([]any, 0, len(checkable)+2)
	for _, platform := range checkable {
		args = append(args, string(platform))
	}
	if firstID := values.Int(OptionFirstID); firstID > 0 {
		query += " AND album_id >= ?"
		args = append(args, firstID)
	}
	query += " ORDER BY album_id, platform"
	if limit := values.Int(OptionLimit); limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.env.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	var items []availabilityWorkItem
	for rows.Next() {
		var item availabilityWorkItem
		if err := rows.Scan(&item.AlbumID, &item.Platform, &item.PlatformID); err != nil {
			return err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return a.saveProgress(ctx, &availabilityProgress{Items: items})
}

func (a *availabilityChecker) ProceedWithNextStep(ctx context.Context) *StepData {
	var progress availabilityProgress
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
	data.Log("Checking album #%d on %s", item.AlbumID, item.Platform.Label())

	helper, err := a.env.Helpers(item.Platform)
	if err != nil {
		return stepFailure(err)
	}
	checker, ok := helper.(platforms.AvailabilityChecker)
	if !ok {
		return FailedStep(0, "platform '"+string(item.Platform)+"' cannot report availability")
	}
	availability, err := checker.AlbumAvailability(ctx, item.PlatformID)
	if err != nil {
		return stepFailure(err)
	}

	tx, err := a.env.DB.BeginTx(ctx, nil)
	if err != nil {
		return stepFailure(err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE album_instances SET availability = ?, last_availability_check = CURRENT_TIMESTAMP
			WHERE album_id = ? AND platform = ?`,
		string(availability), item.AlbumID, string(item.Platform))
	if err != nil {
		tx.Rollback()
		return stepFailure(err)
	}
	if err := tx.Commit(); err != nil {
		return stepFailure(err)
	}
	if availability == platforms.NotAvailable {
		data.LogAs(LogWarning, "Album #%d is no longer available on %s", item.AlbumID, item.Platform.Label())
	} else {
		data.Log("Availability: %s", availability)
	}

	progress.CurrentIndex++
	if err := a.saveProgress(ctx, &progress); err != nil {
		return stepFailure(err)
	}
	data.CurrentItemNumber = progress.CurrentIndex
	return data
}

func placeholders(count int) string {
	if count == 0 {
		return "''"
	}
	result := "?"
	for i := 1; i < count; i++ {
		result += ", ?"
	}
	return result
}
