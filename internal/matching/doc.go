// Package matching resolves a source track against destination search results.
//
// The package is pure: callers fetch candidates and pass them in, so every function here can be
// exercised without network access.
//
// # Normalization
//
// [Normalize] canonicalizes a (title, artist) pair into a [NormalizedKey]: case folding, diacritic
// stripping, removal of bracketed and dash qualifiers such as "(Remastered 2011)" or "- Live",
// removal of featured-artist credits, punctuation stripping and whitespace collapse. Keys are only
// compared, never displayed.
//
// # Scoring
//
// [Score] computes a title and an artist similarity with [Ratio] and combines them with the fixed
// weights [TitleWeight] and [ArtistWeight].
//
// # Matching
//
// [Matcher.FindBestMatch] picks the highest scoring candidate, first seen wins ties, and accepts it
// when the combined score is at least [AcceptThreshold].
package matching
