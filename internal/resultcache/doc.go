// Package resultcache persists preview offsets keyed by (identifier,
// requested duration) in SQLite.
//
// The store is bounded: after every write the least recently accessed
// entries beyond the configured maximum are evicted. A maximum of zero or
// less leaves the cache unbounded. Both analyzed and fallback results are
// stored; callers decide what is worth caching.
package resultcache
