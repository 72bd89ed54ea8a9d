// Package daemon runs the long-lived chorus process: the HTTP API in front of
// the preview service, the result cache it owns, and a flock-based lock that
// keeps a second instance from starting against the same state directory.
//
// Keep request handling thin here. Fetching, analysis and caching decisions
// belong to internal/preview.
package daemon
