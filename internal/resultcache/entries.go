package resultcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Key identifies a cached result.
type Key struct {
	Identifier        string
	RequestedDuration float64
}

// Entry is one cached preview offset.
type Entry struct {
	Key
	StartTime  float64
	Outcome    string
	Reason     string
	CreatedAt  time.Time
	AccessedAt time.Time
}

const entryColumns = "identifier, requested_duration, start_time, outcome, reason, created_at, accessed_at"

// Get returns the entry for key and marks it as recently used. The boolean
// is false on a miss.
func (s *Store) Get(ctx context.Context, key Key) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM results WHERE identifier = ? AND requested_duration = ?",
		key.Identifier, key.RequestedDuration,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get cached result: %w", err)
	}

	now := s.now()
	if _, err := s.db.Write(ctx,
		"UPDATE results SET accessed_at = ? WHERE identifier = ? AND requested_duration = ?",
		now.UnixNano(), key.Identifier, key.RequestedDuration,
	); err != nil {
		return Entry{}, false, fmt.Errorf("touch cached result: %w", err)
	}
	entry.AccessedAt = now
	return entry, true, nil
}

// Put stores or replaces the entry for its key and evicts the least recently
// used entries beyond the configured maximum.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	now := s.now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if _, err := s.db.Write(ctx, `
INSERT INTO results (`+entryColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (identifier, requested_duration) DO UPDATE SET
    start_time = excluded.start_time,
    outcome = excluded.outcome,
    reason = excluded.reason,
    created_at = excluded.created_at,
    accessed_at = excluded.accessed_at`,
		entry.Identifier, entry.RequestedDuration, entry.StartTime, entry.Outcome, entry.Reason,
		entry.CreatedAt.UnixNano(), now.UnixNano(),
	); err != nil {
		return fmt.Errorf("put cached result: %w", err)
	}
	if _, err := s.evict(ctx); err != nil {
		return err
	}
	return nil
}

func (s *Store) evict(ctx context.Context) (int64, error) {
	if s.maxEntries <= 0 {
		return 0, nil
	}
	res, err := s.db.Write(ctx, `
DELETE FROM results WHERE rowid IN (
    SELECT rowid FROM results ORDER BY accessed_at DESC, rowid DESC LIMIT -1 OFFSET ?
)`, s.maxEntries)
	if err != nil {
		return 0, fmt.Errorf("evict cached results: %w", err)
	}
	return res.RowsAffected()
}

// List returns all entries, most recently used first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM results ORDER BY accessed_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("list cached results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Remove deletes every entry for identifier and reports how many were removed.
func (s *Store) Remove(ctx context.Context, identifier string) (int64, error) {
	res, err := s.db.Write(ctx, "DELETE FROM results WHERE identifier = ?", identifier)
	if err != nil {
		return 0, fmt.Errorf("remove cached results: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry and reports how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.Write(ctx, "DELETE FROM results")
	if err != nil {
		return 0, fmt.Errorf("clear cached results: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of cached entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM results").Scan(&n); err != nil {
		return 0, fmt.Errorf("count cached results: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry             Entry
		created, accessed int64
	)
	if err := row.Scan(
		&entry.Identifier, &entry.RequestedDuration, &entry.StartTime,
		&entry.Outcome, &entry.Reason, &created, &accessed,
	); err != nil {
		return Entry{}, err
	}
	entry.CreatedAt = time.Unix(0, created)
	entry.AccessedAt = time.Unix(0, accessed)
	return entry, nil
}
