// Package preflight provides readiness checks for the external binaries and
// filesystem paths chorus depends on.
//
// The daemon runs CheckSystemDeps at startup and logs each missing binary as
// a warning. "chorus preflight" prints the full RunAll result set and can
// also probe the source site over HTTP.
package preflight
