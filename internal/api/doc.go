// Package api defines the wire-format types of the HTTP API and converters
// from internal models.
//
// # Key Types
//
// Request: an analysis request. Accepts identifier/requested_duration and the
// legacy bvid/duration field names.
//
// Response: the analysis answer. Status is "success" whenever a start time was
// produced, including the 0.0 fallback, and "error" only when no audio could
// be fetched.
//
// CacheEntry/CacheListResponse/CacheClearResponse: result cache management
// payloads.
//
// # Design Notes
//
// DTOs use snake_case JSON tags. Timestamps use RFC3339 with milliseconds.
package api
