// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/favsync/internal/models"
)

// StubSource is a [services.SourceCatalog] returning a fixed list of saved tracks.
type StubSource struct {
	Tracks []models.Track
	Err    error
}

func (s *StubSource) Name() string { return "Spotify" }

func (s *StubSource) FetchAll(ctx context.Context) ([]models.Track, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Tracks, nil
}

// StubDestination is a [services.DestinationCatalog] whose search results are keyed by track title.
// AddFavorite fails for ids listed in Reject.
type StubDestination struct {
	Favorites []string
	Results   map[string][]models.Candidate
	Reject    map[string]error

	mu    sync.Mutex
	added []string
}

func (s *StubDestination) Name() string { return "YouTube Music" }

func (s *StubDestination) FetchAllFavorites(ctx context.Context) (models.FavoritesIndex, error) {
	return models.NewFavoritesIndex(s.Favorites...), nil
}

func (s *StubDestination) Search(ctx context.Context, title, artist string) ([]models.Candidate, error) {
	return s.Results[title], nil
}

func (s *StubDestination) AddFavorite(ctx context.Context, id string) error {
	if err := s.Reject[id]; err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, id)
	return nil
}

// Added returns the ids favorited so far.
func (s *StubDestination) Added() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.added...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
