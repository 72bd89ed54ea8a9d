package resultcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T, maxEntries int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "chorus.db"), maxEntries)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t, 10)
	ctx := context.Background()

	key := Key{Identifier: "BV1abc", RequestedDuration: 20}
	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, Entry{Key: key, StartTime: 42.5, Outcome: "analyzed"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.StartTime != 42.5 || got.Outcome != "analyzed" || got.Reason != "" {
		t.Fatalf("unexpected entry %+v", got)
	}
	if !got.AccessedAt.After(got.CreatedAt) {
		t.Fatalf("expected access time after creation, got %v <= %v", got.AccessedAt, got.CreatedAt)
	}

	other := Key{Identifier: "BV1abc", RequestedDuration: 15}
	if _, ok, _ := store.Get(ctx, other); ok {
		t.Fatal("expected distinct duration to miss")
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	store := openTestStore(t, 10)
	ctx := context.Background()
	key := Key{Identifier: "BVx", RequestedDuration: 20}

	if err := store.Put(ctx, Entry{Key: key, StartTime: 0, Outcome: "fallback", Reason: "decode_failed"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, Entry{Key: key, StartTime: 12.34, Outcome: "analyzed"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.StartTime != 12.34 || got.Outcome != "analyzed" || got.Reason != "" {
		t.Fatalf("expected replaced entry, got %+v", got)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestPutEvictsLeastRecentlyUsed(t *testing.T) {
	store := openTestStore(t, 2)
	ctx := context.Background()
	a := Key{Identifier: "a", RequestedDuration: 20}
	b := Key{Identifier: "b", RequestedDuration: 20}
	c := Key{Identifier: "c", RequestedDuration: 20}

	for _, key := range []Key{a, b} {
		if err := store.Put(ctx, Entry{Key: key, Outcome: "analyzed"}); err != nil {
			t.Fatalf("Put %s: %v", key.Identifier, err)
		}
	}
	// Touch a so b becomes the eviction candidate.
	if _, ok, err := store.Get(ctx, a); err != nil || !ok {
		t.Fatalf("Get a: ok=%v err=%v", ok, err)
	}
	if err := store.Put(ctx, Entry{Key: c, Outcome: "analyzed"}); err != nil {
		t.Fatalf("Put c: %v", err)
	}

	if _, ok, _ := store.Get(ctx, b); ok {
		t.Fatal("expected b to be evicted")
	}
	for _, key := range []Key{a, c} {
		if _, ok, _ := store.Get(ctx, key); !ok {
			t.Fatalf("expected %s to survive eviction", key.Identifier)
		}
	}
}

func TestUnboundedStoreKeepsEverything(t *testing.T) {
	store := openTestStore(t, 0)
	ctx := context.Background()
	for i := range 25 {
		key := Key{Identifier: "BV", RequestedDuration: float64(i + 1)}
		if err := store.Put(ctx, Entry{Key: key, Outcome: "analyzed"}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if n, err := store.Count(ctx); err != nil || n != 25 {
		t.Fatalf("expected 25 entries, got %d (%v)", n, err)
	}
}

func TestListRemoveClear(t *testing.T) {
	store := openTestStore(t, 10)
	ctx := context.Background()
	entries := []Entry{
		{Key: Key{Identifier: "one", RequestedDuration: 20}, Outcome: "analyzed", StartTime: 1},
		{Key: Key{Identifier: "one", RequestedDuration: 10}, Outcome: "analyzed", StartTime: 2},
		{Key: Key{Identifier: "two", RequestedDuration: 20}, Outcome: "fallback", Reason: "insufficient_data"},
	}
	for _, entry := range entries {
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	listed, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 3 || listed[0].Identifier != "two" || listed[2].StartTime != 1 {
		t.Fatalf("expected most recent first, got %+v", listed)
	}

	removed, err := store.Remove(ctx, "one")
	if err != nil || removed != 2 {
		t.Fatalf("Remove: removed=%d err=%v", removed, err)
	}
	removed, err = store.Clear(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("Clear: removed=%d err=%v", removed, err)
	}
	if n, _ := store.Count(ctx); n != 0 {
		t.Fatalf("expected empty cache, got %d", n)
	}
}

func TestReopenDetectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chorus.db")
	store, err := Open(path, 10)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path, 10); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chorus.db")
	store, err := Open(path, 10)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	key := Key{Identifier: "persist", RequestedDuration: 20}
	if err := store.Put(context.Background(), Entry{Key: key, StartTime: 3.5, Outcome: "analyzed"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path, 10)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, ok, err := reopened.Get(context.Background(), key)
	if err != nil || !ok || got.StartTime != 3.5 {
		t.Fatalf("expected persisted entry, got %+v ok=%v err=%v", got, ok, err)
	}
}
