// Package models defines the domain values shared by the catalog clients, the matcher and the sync engine.
//
//   - [Track] : a saved track from the source catalog, immutable once fetched
//   - [Candidate] : one destination search hit, in the order the destination ranked it
//   - [FavoritesIndex] : destination ids favorited before a run started
//   - [CachedTrack] : a catalog track persisted by the track cache
//
// Identity across services is never structural. Two tracks are the same only when the matcher says so.
package models
