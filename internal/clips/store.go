package clips

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"chorus/internal/config"
	"chorus/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// Store persists clips in SQLite.
type Store struct {
	db  *sqlitedb.DB
	now func() time.Time
}

// OpenFromConfig opens the clip database under the configured state directory.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return Open(cfg.ClipsPath())
}

// Open initializes or connects to the clip database at path.
func Open(path string) (*Store, error) {
	db, err := sqlitedb.Open(context.Background(), path, schemaSQL, schemaVersion)
	if err != nil {
		return nil, fmt.Errorf("open clip store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.db.Path()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Set resolves and saves the clip for identifier, replacing any earlier one.
func (s *Store) Set(ctx context.Context, identifier string, start float64, end *float64) (Clip, error) {
	clip, err := Resolve(identifier, start, end)
	if err != nil {
		return Clip{}, err
	}
	clip.UpdatedAt = s.now().UTC()
	if _, err := s.db.Write(ctx, `
		INSERT INTO clips (identifier, start_time, end_time, duration, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (identifier) DO UPDATE SET
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			duration = excluded.duration,
			updated_at = excluded.updated_at`,
		clip.Identifier, clip.StartTime, clip.EndTime, clip.Duration, clip.UpdatedAt.UnixNano(),
	); err != nil {
		return Clip{}, fmt.Errorf("save clip: %w", err)
	}
	return clip, nil
}

// Get returns the clip for identifier. The boolean is false when none is saved.
func (s *Store) Get(ctx context.Context, identifier string) (Clip, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT identifier, start_time, end_time, duration, updated_at FROM clips WHERE identifier = ?",
		identifier,
	)
	clip, err := scanClip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Clip{}, false, nil
	}
	if err != nil {
		return Clip{}, false, fmt.Errorf("get clip: %w", err)
	}
	return clip, true, nil
}

// List returns every saved clip ordered by identifier.
func (s *Store) List(ctx context.Context) ([]Clip, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT identifier, start_time, end_time, duration, updated_at FROM clips ORDER BY identifier",
	)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var out []Clip
	for rows.Next() {
		clip, err := scanClip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		out = append(out, clip)
	}
	return out, rows.Err()
}

// Delete removes the clip for identifier and reports whether one existed.
func (s *Store) Delete(ctx context.Context, identifier string) (bool, error) {
	res, err := s.db.Write(ctx, "DELETE FROM clips WHERE identifier = ?", identifier)
	if err != nil {
		return false, fmt.Errorf("delete clip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete clip: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanClip(row scanner) (Clip, error) {
	var (
		clip    Clip
		updated int64
	)
	if err := row.Scan(&clip.Identifier, &clip.StartTime, &clip.EndTime, &clip.Duration, &updated); err != nil {
		return Clip{}, err
	}
	clip.UpdatedAt = time.Unix(0, updated).UTC()
	return clip, nil
}
