package resultcache

import (
	_ "embed"

	"chorus/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in PRAGMA user_version and bumped whenever
// schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch is returned by Open when the database was written by a
// newer schema version. The cache holds only derived data, so deleting the
// file is always safe.
var ErrSchemaMismatch = sqlitedb.ErrSchemaMismatch
