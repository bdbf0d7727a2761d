// package services defines the catalogs the favorites sync reads from and writes to
//
// Spotify (source), YouTube Music via proxy (destination)
package services

import (
	"context"

	"github.com/desertthunder/favsync/internal/models"
)

// SourceCatalog provides the user's saved tracks from the source service.
type SourceCatalog interface {
	// FetchAll returns every saved track, draining all pages.
	// A failure on any page fails the whole fetch.
	FetchAll(ctx context.Context) ([]models.Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// DestinationCatalog reads and mutates the user's favorites on the destination service.
type DestinationCatalog interface {
	// FetchAllFavorites returns the ids of every track already favorited, draining all pages.
	FetchAllFavorites(ctx context.Context) (models.FavoritesIndex, error)

	// Search returns candidate tracks for a title and artist query, possibly empty.
	Search(ctx context.Context, title, artist string) ([]models.Candidate, error)

	// AddFavorite marks the track with id as a favorite.
	AddFavorite(ctx context.Context, id string) error

	// Name returns the name of the service (e.g., "YouTube Music")
	Name() string
}
