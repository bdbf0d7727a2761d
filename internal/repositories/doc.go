// Package repositories implements SQLite persistence for the track cache.
//
// [TrackRepository] stores catalog tracks keyed by (service, service_id). Writes are upserts so
// re-running a sync refreshes metadata and the run id instead of duplicating rows.
// [TrackCacheAdapter] adapts the repository to the sync engine's TrackCacher interface.
//
// The cache is a record of what a sync saw; nothing in the sync reads it back.
package repositories
