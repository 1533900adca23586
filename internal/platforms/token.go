package platforms

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chsxf/vgtunes-dashboard/internal/shared"
)

// fetchTokenFunc obtains a fresh bearer credential and its lifetime from the
// platform's token endpoint.
type fetchTokenFunc func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// TokenCache stores short-lived bearer credentials in the access_tokens
// table, keyed by platform, and refreshes them on expiry.
type TokenCache struct {
	db *sql.DB
}

func NewTokenCache(db *sql.DB) *TokenCache {
	return &TokenCache{db: db}
}

// Token returns a cached credential for the platform, fetching and storing a
// new one when the cache is empty or expired.
func (c *TokenCache) Token(ctx context.Context, platform Platform, fetch fetchTokenFunc) (string, error) {
	var token string
	err := c.db.QueryRowContext(ctx,
		"SELECT access_token FROM access_tokens WHERE platform = ? AND expires_at > CURRENT_TIMESTAMP",
		string(platform)).Scan(&token)
	if err == nil {
		return token, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("%w: %v", shared.ErrTokenFetch, err)
	}

	token, expiresIn, err := fetch(ctx)
	if err != nil {
		return "", fmt.Errorf("%w for %s: %v", shared.ErrTokenFetch, platform, err)
	}

	expiresAt := time.Now().UTC().Add(expiresIn).Format("2006-01-02 15:04:05")
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO access_tokens (platform, access_token, expires_at) VALUES (?, ?, ?)
			ON CONFLICT(platform) DO UPDATE SET access_token = excluded.access_token, expires_at = excluded.expires_at`,
		string(platform), token, expiresAt)
	if err != nil {
		return "", fmt.Errorf("unable to update %s access token: %w", platform, err)
	}

	return token, nil
}
