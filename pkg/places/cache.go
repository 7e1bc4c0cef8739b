package places

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// DetailsCache memoizes Place Details lookups in SQLite so repeated runs
// over the same municipalities do not re-bill details requests.
type DetailsCache struct {
	db *sql.DB
}

// NewDetailsCache opens (or creates) the cache database at path and applies
// the schema.
func NewDetailsCache(path string) (*DetailsCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "places cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "places cache: exec %s", pragma)
		}
	}

	const migration = `
CREATE TABLE IF NOT EXISTS place_details (
	place_id  TEXT PRIMARY KEY,
	website   TEXT NOT NULL DEFAULT '',
	phone     TEXT NOT NULL DEFAULT '',
	cached_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "places cache: migrate")
	}
	return &DetailsCache{db: db}, nil
}

// Close releases the database handle.
func (c *DetailsCache) Close() error {
	return c.db.Close()
}

// Get returns the cached details for a place, or (nil, nil) on a miss.
func (c *DetailsCache) Get(ctx context.Context, placeID string) (*Details, error) {
	var d Details
	err := c.db.QueryRowContext(ctx,
		`SELECT website, phone FROM place_details WHERE place_id = ?`,
		placeID,
	).Scan(&d.Website, &d.Phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "places cache: get %s", placeID)
	}
	return &d, nil
}

// Put stores details for a place, replacing any previous entry.
func (c *DetailsCache) Put(ctx context.Context, placeID string, d *Details) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO place_details (place_id, website, phone, cached_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(place_id) DO UPDATE SET
		   website = excluded.website,
		   phone = excluded.phone,
		   cached_at = excluded.cached_at`,
		placeID, d.Website, d.Phone, time.Now().UTC(),
	)
	return eris.Wrapf(err, "places cache: put %s", placeID)
}
