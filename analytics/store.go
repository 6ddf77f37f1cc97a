// Package analytics records page views in SQLite. Tracking is optional and
// privacy-light: the only visitor datum kept is a salted hash of the IP.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides database operations for page-view analytics.
type Store struct {
	db   *sql.DB
	salt string
}

// PageCount is an aggregated view count for one page in one space.
type PageCount struct {
	Space string
	Page  string
	Views int64
}

// NewStore opens (or creates) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.initSalt(); err != nil {
		return nil, fmt.Errorf("init salt: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			space TEXT NOT NULL,
			page TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_space_page ON visits(space, page);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// initSalt loads the hashing salt, generating and persisting one on first
// run so IP hashes stay stable across restarts.
func (s *Store) initSalt() error {
	salt, err := s.getSetting("ip_salt")
	if err != nil {
		return err
	}
	if salt == "" {
		buf := make([]byte, 16)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		salt = hex.EncodeToString(buf)
		if err := s.setSetting("ip_salt", salt); err != nil {
			return err
		}
	}
	s.salt = salt
	return nil
}

func (s *Store) getSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// RecordVisit stores one page view. The raw IP never touches disk.
func (s *Store) RecordVisit(space, page, ip string) error {
	sum := sha256.Sum256([]byte(s.salt + ip))
	_, err := s.db.Exec(`INSERT INTO visits (space, page, ip_hash, timestamp) VALUES (?, ?, ?, ?)`,
		space, page, hex.EncodeToString(sum[:]), time.Now().UTC())
	return err
}

// TopPages returns per-page view counts across all spaces, most viewed
// first, capped at limit.
func (s *Store) TopPages(limit int) ([]PageCount, error) {
	rows, err := s.db.Query(`
		SELECT space, page, COUNT(*) AS views
		FROM visits
		GROUP BY space, page
		ORDER BY views DESC, space, page
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []PageCount
	for rows.Next() {
		var pc PageCount
		if err := rows.Scan(&pc.Space, &pc.Page, &pc.Views); err != nil {
			return nil, err
		}
		counts = append(counts, pc)
	}
	return counts, rows.Err()
}

// DeleteOlderThan removes visits older than retention and returns how many
// rows went away.
func (s *Store) DeleteOlderThan(retention time.Duration) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, time.Now().UTC().Add(-retention))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupScheduler prunes old visits every interval until the returned
// stop function is called.
func (s *Store) StartCleanupScheduler(retention, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				_, _ = s.DeleteOlderThan(retention)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
