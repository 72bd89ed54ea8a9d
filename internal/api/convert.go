package api

import (
	"time"

	"chorus/internal/clips"
	"chorus/internal/resultcache"
)

// FromCacheEntry converts a stored result into its transport form.
func FromCacheEntry(entry resultcache.Entry) CacheEntry {
	return CacheEntry{
		Identifier:        entry.Identifier,
		RequestedDuration: entry.RequestedDuration,
		StartTime:         entry.StartTime,
		Outcome:           entry.Outcome,
		Reason:            entry.Reason,
		CreatedAt:         formatTime(entry.CreatedAt),
		AccessedAt:        formatTime(entry.AccessedAt),
	}
}

// FromCacheEntries converts a slice of stored results, preserving order.
func FromCacheEntries(entries []resultcache.Entry) []CacheEntry {
	out := make([]CacheEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromCacheEntry(entry))
	}
	return out
}

// FromClip converts a saved clip into its transport form.
func FromClip(clip clips.Clip) Clip {
	return Clip{
		Identifier: clip.Identifier,
		StartTime:  clip.StartTime,
		EndTime:    clip.EndTime,
		Duration:   clip.Duration,
		UpdatedAt:  formatTime(clip.UpdatedAt),
	}
}

// FromClips converts a slice of saved clips, preserving order.
func FromClips(list []clips.Clip) []Clip {
	out := make([]Clip, 0, len(list))
	for _, clip := range list {
		out = append(out, FromClip(clip))
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
