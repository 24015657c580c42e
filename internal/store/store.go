package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// Store is the SQLite-backed activity store and settings table.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS activities (
		id                   INTEGER PRIMARY KEY,
		name                 TEXT NOT NULL DEFAULT '',
		sport_type           TEXT NOT NULL DEFAULT '',
		distance             REAL,
		total_elevation_gain REAL,
		elapsed_time         REAL,
		average_speed        REAL,
		start_date_local     TEXT,
		country              TEXT NOT NULL DEFAULT '',
		imported_at          TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_activities_date  ON activities(start_date_local);
	CREATE INDEX IF NOT EXISTS idx_activities_sport ON activities(sport_type);

	CREATE TABLE IF NOT EXISTS saved_filters (
		name        TEXT PRIMARY KEY,
		sport_types TEXT NOT NULL DEFAULT '',
		country     TEXT NOT NULL DEFAULT '',
		from_date   TEXT,
		to_date     TEXT,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('timeline.period',     'week'),
		('timeline.value',      'time'),
		('timeline.group',      'sport_group'),
		('timeline.cumulative', 'true'),
		('trend.period',        'week'),
		('trend.averaging',     'movingAvg7'),
		('violin.value',        'distance'),
		('violin.group',        'sport_group'),
		('violin.scale',        'linear'),
		('calendar.value',      'time'),
		('pie.value',           'time'),
		('pie.group',           'sport_group'),
		('geo.value',           'count');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/actistats/actistats.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "actistats", "actistats.db"), nil
}
