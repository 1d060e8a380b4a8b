// Package cache stores fetched detail pages in a local SQLite database so
// repeated runs against the same term list do not re-fetch unchanged pages.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// PageCache caches raw detail-page HTML keyed by URL with a TTL.
type PageCache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path and runs the schema.
func Open(path string) (*PageCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}

	const schema = `
CREATE TABLE IF NOT EXISTS page_cache (
	url        TEXT PRIMARY KEY,
	html       TEXT NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_page_cache_expires_at ON page_cache(expires_at);
`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "cache: migrate")
	}

	return &PageCache{db: db}, nil
}

// Get returns the cached HTML for url if present and not expired.
func (c *PageCache) Get(ctx context.Context, url string) (string, bool, error) {
	var html string
	err := c.db.QueryRowContext(ctx,
		`SELECT html FROM page_cache WHERE url = ? AND expires_at > ?`,
		url, time.Now().UTC(),
	).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, eris.Wrapf(err, "cache: get %s", url)
	}
	return html, true, nil
}

// Put stores HTML for url, replacing any previous entry.
func (c *PageCache) Put(ctx context.Context, url, html string, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO page_cache (url, html, fetched_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET html = excluded.html,
		   fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		url, html, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "cache: put %s", url)
}

// Purge deletes expired entries and returns how many were removed.
func (c *PageCache) Purge(ctx context.Context) (int, error) {
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM page_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge rows affected")
	}
	return int(n), nil
}

// Close closes the underlying database.
func (c *PageCache) Close() error {
	return c.db.Close()
}
