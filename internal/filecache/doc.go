// Package filecache keeps directory listings so repeated lookups avoid
// re-walking large recording trees.
//
// A listing is identified by (absolute directory, extension) and lives in two
// tiers: an in-process map owned by a Cache value, and a persisted Store that
// survives restarts. Get consults memory, then the store, then the scanner,
// writing a fresh scan back to both tiers. The persisted tier is best-effort:
// anything unreadable there is logged and treated as a miss.
//
// # Storage
//
// FileStore keeps one JSON snapshot per extension
// (<cache_dir>/file_cache_<ext>.json) holding every cached directory for that
// extension. Writers serialize on a sibling .lock file. SQLiteStore keeps the
// same data in a single <cache_dir>/file_cache.db.
//
// Clear only empties the in-memory tier; Purge removes persisted data as well.
package filecache
