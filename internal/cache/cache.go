// Package cache provides SQLite-backed storage of Reasoning Service
// responses keyed by the hash of a section's text and code, so repeated
// runs over unchanged documentation avoid repeat API cost. Every cache
// failure degrades to a miss; the cache never fails a linking run.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Stats summarizes the cache contents.
type Stats struct {
	TotalEntries   int `json:"total_entries"`
	ValidEntries   int `json:"valid_entries"`
	ExpiredEntries int `json:"expired_entries"`
}

// Cache wraps a SQLite database of cached responses with a TTL.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// Open opens (or creates) the cache database at dbPath and ensures the
// schema exists. Use ":memory:" for an in-memory cache. Entries older
// than ttl are treated as absent and purged.
func Open(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		key        TEXT PRIMARY KEY,
		payload    BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached payload for a text/code pair, if present and not
// expired. Lookup errors are logged and reported as misses.
func (c *Cache) Get(text, code string) ([]byte, bool) {
	var payload []byte
	var createdAt int64
	err := c.db.QueryRow(
		`SELECT payload, created_at FROM responses WHERE key = ?`,
		key(text, code),
	).Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Msg("cache lookup failed")
		return nil, false
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(createdAt, 0)) > c.ttl {
		if _, err := c.db.Exec(`DELETE FROM responses WHERE key = ?`, key(text, code)); err != nil {
			log.Warn().Err(err).Msg("cache expiry cleanup failed")
		}
		return nil, false
	}

	return payload, true
}

// Put stores a payload for a text/code pair, replacing any existing entry.
// Write errors are logged and ignored.
func (c *Cache) Put(text, code string, payload []byte) {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO responses (key, payload, created_at) VALUES (?, ?, ?)`,
		key(text, code), payload, c.now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Msg("cache write failed")
	}
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec(`DELETE FROM responses`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Stats reports entry counts, splitting valid from expired.
func (c *Cache) Stats() (Stats, error) {
	var s Stats
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&s.TotalEntries); err != nil {
		return Stats{}, fmt.Errorf("count cache entries: %w", err)
	}

	cutoff := int64(0)
	if c.ttl > 0 {
		cutoff = c.now().Add(-c.ttl).Unix()
	}
	err := c.db.QueryRow(
		`SELECT COUNT(*) FROM responses WHERE created_at > ?`, cutoff,
	).Scan(&s.ValidEntries)
	if err != nil {
		return Stats{}, fmt.Errorf("count valid cache entries: %w", err)
	}

	s.ExpiredEntries = s.TotalEntries - s.ValidEntries
	return s, nil
}

// key derives the cache key for a text/code pair.
func key(text, code string) string {
	sum := sha256.Sum256([]byte(text + "\n" + code))
	return hex.EncodeToString(sum[:])
}
