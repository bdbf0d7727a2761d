package tasks

import (
	"context"

	"github.com/desertthunder/favsync/internal/models"
	"github.com/desertthunder/favsync/internal/services"
)

// filteredSource narrows a source catalog to a fixed set of track ids.
type filteredSource struct {
	services.SourceCatalog
	keep map[string]struct{}
}

// OnlyTracks wraps source so FetchAll returns only the saved tracks whose id is in ids,
// keeping the source order. Ids no longer in the library are dropped.
func OnlyTracks(source services.SourceCatalog, ids ...string) services.SourceCatalog {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	return &filteredSource{SourceCatalog: source, keep: keep}
}

func (f *filteredSource) FetchAll(ctx context.Context) ([]models.Track, error) {
	tracks, err := f.SourceCatalog.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	kept := tracks[:0:0]
	for _, t := range tracks {
		if _, ok := f.keep[t.ID]; ok {
			kept = append(kept, t)
		}
	}
	return kept, nil
}
