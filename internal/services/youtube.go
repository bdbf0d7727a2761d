// YouTube Music [DestinationCatalog] implementation
//
// Communicates with the FastAPI proxy server (music/) running on port 8080.
// The proxy wraps the ytmusicapi Python library for YouTube Music operations.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favsync/internal/models"
	"github.com/desertthunder/favsync/internal/shared"
)

const (
	defaultYTBaseURL     = "http://127.0.0.1:8080"
	likedSongsPageSize   = 100
	defaultSearchResults = 10
	ratingLike           = "LIKE"
)

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a track/video in YouTube Music responses.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"`
	LikeStatus  string          `json:"likeStatus,omitempty"`
}

func (t YouTubeTrack) toCandidate() models.Candidate {
	c := models.Candidate{ID: t.VideoID, Title: t.Title}
	if len(t.Artists) > 0 {
		c.Artist = t.Artists[0].Name
	}
	if t.Album != nil {
		c.Album = t.Album.Name
	}
	return c
}

// likedSongsPage is one page of GET /api/library/liked-songs.
type likedSongsPage struct {
	Tracks       []YouTubeTrack `json:"tracks"`
	Continuation string         `json:"continuation"`
}

// ProxyHealth is the response of GET /health.
type ProxyHealth struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
}

// YouTubeService implements [DestinationCatalog] for YouTube Music via the proxy.
type YouTubeService struct {
	baseURL     string
	authFile    string
	searchLimit int
	http        *transport
}

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(cfg shared.YouTubeConfig, httpCfg shared.HTTPConfig, searchLimit int) *YouTubeService {
	baseURL := strings.TrimRight(cfg.ProxyURL, "/")
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}
	if searchLimit <= 0 {
		searchLimit = defaultSearchResults
	}

	return &YouTubeService{
		baseURL:     baseURL,
		authFile:    cfg.HeadersPath,
		searchLimit: searchLimit,
		http:        newTransport("youtube music", httpCfg),
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// SetLogger routes retry diagnostics to l.
func (y *YouTubeService) SetLogger(l *log.Logger) {
	if l != nil {
		y.http.logger = l
	}
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	return y.http.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, y.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if y.authFile != "" {
			req.Header.Set("X-Auth-File", y.authFile)
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, result)
}

// Health reports whether the proxy is reachable and holds valid YouTube Music credentials.
//
// Calls GET /health on the proxy.
func (y *YouTubeService) Health(ctx context.Context) (*ProxyHealth, error) {
	var health ProxyHealth
	if err := y.doRequest(ctx, http.MethodGet, "/health", nil, &health); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	return &health, nil
}

// FetchAllFavorites returns the ids of every liked song, following continuation tokens.
//
// Calls GET /api/library/liked-songs?limit={n}[&continuation={token}] on the proxy.
func (y *YouTubeService) FetchAllFavorites(ctx context.Context) (models.FavoritesIndex, error) {
	index := models.NewFavoritesIndex()
	seen := make(map[string]struct{})
	continuation := ""

	for {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(likedSongsPageSize))
		if continuation != "" {
			params.Set("continuation", continuation)
		}

		var page likedSongsPage
		if err := y.doRequest(ctx, http.MethodGet, "/api/library/liked-songs?"+params.Encode(), nil, &page); err != nil {
			return nil, &FetchError{Service: y.Name(), Op: "liked songs", Err: err}
		}

		for _, track := range page.Tracks {
			index.Add(track.VideoID)
		}

		if page.Continuation == "" {
			return index, nil
		}
		if _, ok := seen[page.Continuation]; ok {
			return nil, &FetchError{Service: y.Name(), Op: "liked songs", Err: errors.New("continuation token repeated")}
		}
		seen[page.Continuation] = struct{}{}
		continuation = page.Continuation
	}
}

// Search returns song candidates for title and artist in the order the proxy ranked them.
//
// Calls GET /api/search?q={title} {artist}&filter=songs&limit={n} on the proxy.
func (y *YouTubeService) Search(ctx context.Context, title, artist string) ([]models.Candidate, error) {
	query := strings.TrimSpace(title + " " + artist)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("filter", "songs")
	params.Set("limit", strconv.Itoa(y.searchLimit))

	var results []YouTubeTrack
	if err := y.doRequest(ctx, http.MethodGet, "/api/search?"+params.Encode(), nil, &results); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if len(results) > y.searchLimit {
		results = results[:y.searchLimit]
	}

	candidates := make([]models.Candidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, r.toCandidate())
	}
	return candidates, nil
}

// AddFavorite likes the song with videoID.
//
// Calls POST /api/songs/{videoId}/rating on the proxy.
func (y *YouTubeService) AddFavorite(ctx context.Context, videoID string) error {
	if videoID == "" {
		return &MutationError{ID: videoID, Err: shared.ErrInvalidInput}
	}

	body := map[string]string{"rating": ratingLike}
	endpoint := fmt.Sprintf("/api/songs/%s/rating", url.PathEscape(videoID))
	if err := y.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		status, detail := statusOf(err)
		return &MutationError{ID: videoID, StatusCode: status, Detail: detail, Err: err}
	}
	return nil
}
