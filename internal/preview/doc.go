// Package preview answers analysis requests: it fetches the track audio,
// runs the analyzer and memoizes the result.
//
// Concurrent requests for the same (identifier, duration) key share one
// computation. A fetch failure yields a Response with status "error" and is
// not cached; an analysis fallback is a normal "success" answer with a start
// time of 0 and is cached like any other result.
package preview
