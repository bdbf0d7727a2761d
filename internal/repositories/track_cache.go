package repositories

import (
	"fmt"

	"github.com/desertthunder/favsync/internal/models"
)

// TrackCacheAdapter implements tasks.TrackCacher using TrackRepository.
//
// Repeated tracks refresh the existing row via the (service, service_id) constraint.
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// CacheTrack caches a track fetched from service during run runID.
func (a *TrackCacheAdapter) CacheTrack(runID, service string, track models.Track) error {
	if err := a.repo.Upsert(models.NewCachedTrack(runID, service, track)); err != nil {
		return fmt.Errorf("failed to cache track: %w", err)
	}
	return nil
}
