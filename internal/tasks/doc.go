// Package tasks reconciles saved tracks from a source catalog into favorites on a destination catalog.
//
// # Reconciliation
//
// [FavoritesEngine.Sync] fetches every saved source track and, when skip-existing is enabled, the
// destination favorites index. Each track is then classified into exactly one [SyncOutcome]:
//
//  1. Already favorited by its known destination id (no search)
//  2. Search the destination; errors become [FailedToAdd], no results [NotFound]
//  3. Score candidates with [matching.Matcher]; below threshold is [NoGoodMatch]
//  4. A match already in the favorites index is [AlreadyFavorited]
//  5. A match claimed earlier in the run is [AlreadyFavorited]
//  6. Dry runs report [Favorited] without mutating
//  7. Otherwise the match is favorited; a failed mutation is [FailedToAdd] and releases the claim
//
// Only the two catalog fetches abort a run.
//
// # Concurrency
//
// With one worker, tracks are processed in source order. With more, a bounded worker pool runs
// tracks concurrently and outcomes are delivered in completion order. Reporter calls are always
// made from the Sync goroutine.
//
// # Interruption
//
// Cancelling the run context stops new tracks from starting. Tracks in flight finish on a context
// detached from cancellation, the summary covers the processed tracks, and [SyncResult.Err]
// returns [shared.ErrInterrupted].
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Track Caching
//
// The optional [TrackCacher] stores fetched source tracks and favorited destination tracks.
// Tracks are cached silently (errors logged at debug level) and never read back by the engine.
package tasks
