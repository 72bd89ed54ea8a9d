package resultcache

import (
	"context"
	"fmt"
	"time"

	"chorus/internal/config"
	"chorus/internal/sqlitedb"
)

// Store is the SQLite-backed result cache.
type Store struct {
	db         *sqlitedb.DB
	maxEntries int
	now        func() time.Time
}

// OpenFromConfig opens the cache database under the configured state directory.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return Open(cfg.DatabasePath(), cfg.ResultCache.MaxEntries)
}

// Open initializes or connects to the cache database at dbPath.
func Open(dbPath string, maxEntries int) (*Store, error) {
	db, err := sqlitedb.Open(context.Background(), dbPath, schemaSQL, schemaVersion)
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}
	return &Store{db: db, maxEntries: maxEntries, now: time.Now}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.db.Path()
}

// MaxEntries returns the eviction bound; zero or less means unbounded.
func (s *Store) MaxEntries() int {
	return s.maxEntries
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
