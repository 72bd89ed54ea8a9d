// Package fetch downloads source audio for a track identifier with yt-dlp and
// keeps it in the media directory for reuse.
//
// Fetch is idempotent: a file that already exists and is larger than the
// configured minimum size is returned without touching the network.
// Concurrent requests for the same identifier inside one process share a
// single download, and a per-identifier file lock keeps separate processes
// from writing the same file at once.
package fetch
