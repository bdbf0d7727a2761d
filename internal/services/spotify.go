// Spotify Web API implementation of [SourceCatalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favsync/internal/models"
	"github.com/desertthunder/favsync/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI is used when the credentials file omits redirect_uri.
	DefaultRedirectURI = "http://127.0.0.1:3000/callback"

	savedTracksPageSize = 50
	maxPrealloc         = 10_000
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	ExternalIDs externalIDs     `json:"external_ids"`
	IsLocal     bool            `json:"is_local"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifySavedTrack represents a track saved in the user's library.
// Track is nil for entries Spotify can no longer resolve.
type SpotifySavedTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Items  []SpotifySavedTrack `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
	Next   *string             `json:"next"`
}

// toModel converts a Spotify track, crediting only the first artist.
func (t SpotifyTrack) toModel() models.Track {
	track := models.Track{
		ID:          t.ID,
		Title:       t.Name,
		Album:       t.Album.Name,
		DurationSec: t.DurationMS / 1000,
		ISRC:        t.ExternalIDs.ISRC,
	}
	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}
	return track
}

// SpotifyService implements [SourceCatalog] for the Spotify Web API.
// Uses [oauth2] for authentication; expired access tokens are refreshed transparently.
type SpotifyService struct {
	config  *oauth2.Config
	creds   shared.SpotifyConfig
	source  oauth2.TokenSource
	baseURL string
	http    *transport
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(creds shared.SpotifyConfig, httpCfg shared.HTTPConfig) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = DefaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       []string{"user-library-read"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:  config,
		creds:   creds,
		baseURL: spotifyBaseURL,
		http:    newTransport("spotify", httpCfg),
	}, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetLogger routes retry diagnostics to l.
func (s *SpotifyService) SetLogger(l *log.Logger) {
	if l != nil {
		s.http.logger = l
	}
}

// Authenticate prepares a token source from the stored tokens.
//
// A refresh token is preferred; the stored access token is treated as expired and refreshed on first use.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	switch {
	case s.creds.RefreshToken != "":
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http.client)
		s.source = s.config.TokenSource(ctx, s.creds.Token())
	case s.creds.AccessToken != "":
		s.source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.creds.AccessToken, TokenType: "Bearer"})
	default:
		return fmt.Errorf("%w: spotify tokens missing, run `favsync auth spotify`", shared.ErrNotAuthenticated)
	}
	return nil
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for tokens and uses them for subsequent requests.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http.client)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	s.source = s.config.TokenSource(ctx, token)
	return token, nil
}

// get performs an authenticated GET against rawURL, which may be a path under baseURL or an absolute URL.
func (s *SpotifyService) get(ctx context.Context, rawURL string, result any) error {
	if s.source == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	target := rawURL
	if u, err := url.Parse(rawURL); err != nil || !u.IsAbs() {
		target = s.baseURL + rawURL
	}

	return s.http.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		token, err := s.source.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		token.SetAuthHeader(req)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, result)
}

// UserProfile retrieves the current authenticated user's profile.
func (s *SpotifyService) UserProfile(ctx context.Context) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.get(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// SavedTracks retrieves one page of the user's saved tracks.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*SpotifyPaginatedTracks, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > savedTracksPageSize {
		limit = savedTracksPageSize
	}

	var response SpotifyPaginatedTracks
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)
	if err := s.get(ctx, endpoint, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// FetchAll retrieves every saved track by following the next links until exhausted.
//
// Unresolvable and local-file entries are skipped; the number of skipped local files is logged.
func (s *SpotifyService) FetchAll(ctx context.Context) ([]models.Track, error) {
	page, err := s.SavedTracks(ctx, savedTracksPageSize, 0)
	if err != nil {
		return nil, &FetchError{Service: s.Name(), Op: "saved tracks", Err: err}
	}

	tracks := make([]models.Track, 0, min(max(page.Total, 0), maxPrealloc))
	seen := make(map[string]struct{})
	var local int
	for {
		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			if item.Track.IsLocal {
				local++
				continue
			}
			if item.Track.ID == "" {
				continue
			}
			tracks = append(tracks, item.Track.toModel())
		}

		if page.Next == nil || *page.Next == "" {
			break
		}
		next := *page.Next
		if _, ok := seen[next]; ok {
			return nil, &FetchError{Service: s.Name(), Op: "saved tracks", Err: fmt.Errorf("pagination loop at %s", next)}
		}
		seen[next] = struct{}{}

		page = &SpotifyPaginatedTracks{}
		if err := s.get(ctx, next, page); err != nil {
			return nil, &FetchError{Service: s.Name(), Op: "saved tracks", Err: err}
		}
	}

	if local > 0 {
		s.http.logger.Warn("skipped local files, they cannot be matched on another service", "count", local)
	}
	return tracks, nil
}
