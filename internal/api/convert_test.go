package api

import (
	"testing"
	"time"

	"chorus/internal/clips"
	"chorus/internal/resultcache"
)

func TestFromCacheEntry(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))
	entry := resultcache.Entry{
		Key:        resultcache.Key{Identifier: "BV1", RequestedDuration: 20},
		StartTime:  61.25,
		Outcome:    "analyzed",
		CreatedAt:  created,
		AccessedAt: created.Add(1500 * time.Millisecond),
	}
	got := FromCacheEntry(entry)
	if got.Identifier != "BV1" || got.RequestedDuration != 20 || got.StartTime != 61.25 || got.Outcome != "analyzed" {
		t.Fatalf("unexpected conversion %+v", got)
	}
	if got.CreatedAt != "2024-05-01T04:00:00.000Z" || got.AccessedAt != "2024-05-01T04:00:01.500Z" {
		t.Fatalf("unexpected timestamps %q %q", got.CreatedAt, got.AccessedAt)
	}
	if FromCacheEntry(resultcache.Entry{}).CreatedAt != "" {
		t.Fatal("expected zero time to be omitted")
	}
	if list := FromCacheEntries(nil); list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}

func TestFromClip(t *testing.T) {
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CST", 8*3600))
	got := FromClip(clips.Clip{Identifier: "BV1", StartTime: 10, EndTime: 30, Duration: 20, UpdatedAt: updated})
	if got.Identifier != "BV1" || got.StartTime != 10 || got.EndTime != 30 || got.Duration != 20 {
		t.Fatalf("unexpected conversion %+v", got)
	}
	if got.UpdatedAt != "2024-05-01T04:00:00.000Z" {
		t.Fatalf("unexpected timestamp %q", got.UpdatedAt)
	}
	if list := FromClips(nil); list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", list)
	}
}
