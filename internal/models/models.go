// package models defines the data model for the favorites sync
package models

import (
	"fmt"
	"strings"
	"time"
)

// Track represents a saved track from the source catalog.
type Track struct {
	ID            string // Source service identifier
	Title         string
	Artist        string // Primary (first credited) artist
	Album         string
	DurationSec   int
	ISRC          string
	DestinationID string // Destination identifier when already resolved, empty otherwise
}

// String renders the track as "Artist - Title" for progress output.
func (t Track) String() string {
	if t.Artist == "" {
		return t.Title
	}
	return t.Artist + " - " + t.Title
}

// Candidate is a destination catalog search result.
type Candidate struct {
	ID     string
	Title  string
	Artist string
	Album  string
}

// FavoritesIndex is the set of destination track ids favorited before a run.
type FavoritesIndex map[string]struct{}

// NewFavoritesIndex builds an index from ids, ignoring empty values.
func NewFavoritesIndex(ids ...string) FavoritesIndex {
	idx := make(FavoritesIndex, len(ids))
	for _, id := range ids {
		idx.Add(id)
	}
	return idx
}

// Add inserts id into the index.
func (f FavoritesIndex) Add(id string) {
	if id != "" {
		f[id] = struct{}{}
	}
}

// Contains reports whether id is favorited. A nil index contains nothing.
func (f FavoritesIndex) Contains(id string) bool {
	if id == "" {
		return false
	}
	_, ok := f[id]
	return ok
}

// Len returns the number of favorited ids.
func (f FavoritesIndex) Len() int {
	return len(f)
}

// CachedTrack is a catalog track stored in the local track cache.
type CachedTrack struct {
	ID        string
	RunID     string
	Service   string
	ServiceID string
	Title     string
	Artist    string
	Album     string
	Duration  int
	ISRC      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCachedTrack creates a [CachedTrack] for a track fetched from service during run.
func NewCachedTrack(runID, service string, track Track) *CachedTrack {
	now := time.Now().UTC()
	return &CachedTrack{
		RunID:     runID,
		Service:   service,
		ServiceID: track.ID,
		Title:     track.Title,
		Artist:    track.Artist,
		Album:     track.Album,
		Duration:  track.DurationSec,
		ISRC:      track.ISRC,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks the fields required by the tracks table.
func (c *CachedTrack) Validate() error {
	switch {
	case strings.TrimSpace(c.Service) == "":
		return fmt.Errorf("service is required")
	case strings.TrimSpace(c.ServiceID) == "":
		return fmt.Errorf("service_id is required")
	case strings.TrimSpace(c.Title) == "":
		return fmt.Errorf("title is required")
	case c.Duration < 0:
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}
