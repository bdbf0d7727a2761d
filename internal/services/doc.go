// Package services implements the catalogs used by the favorites sync: Spotify saved tracks as the
// [SourceCatalog] and YouTube Music liked songs as the [DestinationCatalog].
//
// # Spotify
//
// [SpotifyService] uses OAuth2 for authentication. When a refresh token is stored the access token
// is refreshed transparently by the [oauth2.TokenSource]. [SpotifyService.FetchAll] follows the
// "next" links of GET /me/tracks until the library is exhausted.
//
// # YouTube Music
//
// [YouTubeService] communicates with the FastAPI proxy server (music/) wrapping ytmusicapi.
// The headers file path is sent via the X-Auth-File header on each request. Liked songs are
// paged with continuation tokens; favorites are added with a LIKE rating.
//
// # Transport
//
// Both clients share a rate limited transport ([golang.org/x/time/rate]) that retries
// 408, 429, 5xx and network timeouts with capped exponential backoff ([RetryPolicy]).
//
// # Error Handling
//
//   - [FetchError] matches [shared.ErrFetch]: any page of a catalog read failed
//   - [MutationError] matches [shared.ErrMutation]: the destination rejected a favorite
//   - [StatusError] wraps [shared.ErrAPIRequest]: a non-2xx response
//   - [shared.ErrNotAuthenticated]: Spotify tokens are missing
package services
