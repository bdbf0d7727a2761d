// package tasks implements the favorites reconciliation between a source and a destination catalog.
//
// The core abstraction is FavoritesEngine, which walks every saved source track, matches it against the
// destination catalog, and favorites the match. Operations emit progress updates via channels for
// non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favsync/internal/matching"
	"github.com/desertthunder/favsync/internal/models"
	"github.com/desertthunder/favsync/internal/services"
	"github.com/desertthunder/favsync/internal/shared"
)

const maxWorkers = 16

// Reporter receives one call per outcome, then exactly one summary call. Calls are never concurrent.
type Reporter interface {
	ReportOutcome(o SyncOutcome)
	ReportSummary(s SyncSummary)
}

// TrackCacher persists catalog tracks seen during a run. Failures never affect the run.
type TrackCacher interface {
	CacheTrack(runID, service string, track models.Track) error
}

// Options control a single sync run.
type Options struct {
	DryRun       bool // Classify without mutating the destination
	SkipExisting bool // Fetch the destination favorites and skip tracks already in them
	Workers      int  // Concurrent tracks in flight; 1 (or less) processes in source order
}

// SyncResult contains all data from a sync run.
type SyncResult struct {
	RunID       string
	Outcomes    []SyncOutcome // In delivery order
	Summary     SyncSummary
	Interrupted bool // The run context was cancelled before every track was processed
	Ordered     bool // Outcomes follow source order (sequential mode)
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Err maps the result to [shared.ErrInterrupted], [shared.ErrPartialFailure] or nil.
func (r *SyncResult) Err() error {
	switch {
	case r == nil:
		return nil
	case r.Interrupted:
		return fmt.Errorf("%w after %d tracks", shared.ErrInterrupted, r.Summary.Total)
	case r.Summary.FailedToAdd > 0:
		return fmt.Errorf("%w: %d of %d tracks could not be favorited", shared.ErrPartialFailure, r.Summary.FailedToAdd, r.Summary.Total)
	default:
		return nil
	}
}

// FavoritesEngine reconciles source saved tracks into destination favorites.
type FavoritesEngine struct {
	source  services.SourceCatalog
	dest    services.DestinationCatalog
	matcher *matching.Matcher
	opts    Options
	cacher  TrackCacher
	logger  *log.Logger
}

// NewFavoritesEngine creates a new FavoritesEngine with the provided catalogs.
func NewFavoritesEngine(source services.SourceCatalog, dest services.DestinationCatalog, opts Options) *FavoritesEngine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Workers > maxWorkers {
		opts.Workers = maxWorkers
	}
	return &FavoritesEngine{
		source:  source,
		dest:    dest,
		matcher: matching.NewMatcher(),
		opts:    opts,
		logger:  shared.NewLogger(io.Discard),
	}
}

// SetTrackCacher sets the optional track cacher.
func (e *FavoritesEngine) SetTrackCacher(cacher TrackCacher) {
	e.cacher = cacher
}

// SetLogger replaces the engine logger.
func (e *FavoritesEngine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// SetMatcher replaces the default matcher.
func (e *FavoritesEngine) SetMatcher(m *matching.Matcher) {
	if m != nil {
		e.matcher = m
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *FavoritesEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sync runs one reconciliation of every source track.
//
// Only the two catalog fetches abort the run; per-track failures are reported as outcomes.
// Cancelling ctx stops new tracks from starting; tracks already in flight finish and the
// summary covers what was processed.
func (e *FavoritesEngine) Sync(ctx context.Context, reporter Reporter, progress chan<- ProgressUpdate) (*SyncResult, error) {
	if e.source == nil || e.dest == nil {
		return nil, fmt.Errorf("%w: catalogs not initialized", shared.ErrServiceUnavailable)
	}
	if reporter == nil {
		reporter = discardReporter{}
	}

	result := &SyncResult{
		RunID:     shared.GenerateID(),
		Ordered:   e.opts.Workers == 1,
		StartedAt: time.Now(),
	}
	logger := shared.WithLogger(e.logger, "run_id", result.RunID)
	logger.Info("starting sync", "source", e.source.Name(), "destination", e.dest.Name(),
		"dry_run", e.opts.DryRun, "skip_existing", e.opts.SkipExisting, "workers", e.opts.Workers)

	e.sendProgress(progress, fetchSourceUpdate(e.source.Name()))
	tracks, err := e.source.FetchAll(ctx)
	if err != nil {
		return nil, fetchFailure(ctx, e.source.Name(), "saved tracks", err)
	}
	logger.Info("fetched saved tracks", "count", len(tracks))
	e.cacheTracks(logger, result.RunID, e.source.Name(), tracks...)

	var index models.FavoritesIndex
	if e.opts.SkipExisting {
		e.sendProgress(progress, fetchFavoritesUpdate(e.dest.Name()))
		if index, err = e.dest.FetchAllFavorites(ctx); err != nil {
			return nil, fetchFailure(ctx, e.dest.Name(), "favorites", err)
		}
		logger.Info("fetched favorites", "count", index.Len())
	} else {
		e.sendProgress(progress, skipFavoritesUpdate())
	}

	run := &syncRun{
		engine:   e,
		logger:   logger,
		index:    index,
		claims:   newClaimSet(),
		total:    len(tracks),
		reporter: reporter,
		progress: progress,
		result:   result,
	}

	if result.Ordered {
		run.sequential(ctx, tracks)
	} else {
		run.pooled(ctx, tracks)
	}

	result.Summary.Interrupted = result.Interrupted
	result.FinishedAt = time.Now()
	if result.Interrupted {
		e.sendProgress(progress, interruptedUpdate(result.Summary.Total, len(tracks)))
		logger.Warn("sync interrupted", "processed", result.Summary.Total, "total", len(tracks))
	}

	reporter.ReportSummary(result.Summary)
	e.sendProgress(progress, summaryUpdate(result.Summary))
	logger.Info("sync finished",
		"total", result.Summary.Total,
		"favorited", result.Summary.Favorited,
		"already_favorited", result.Summary.AlreadyFavorited,
		"not_found", result.Summary.NotFound,
		"no_good_match", result.Summary.NoGoodMatch,
		"failed", result.Summary.FailedToAdd,
		"duration", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	return result, nil
}

// fetchFailure wraps a catalog fetch error, reporting interruption when ctx was cancelled.
func fetchFailure(ctx context.Context, service, what string, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return fmt.Errorf("%w: fetching %s %s: %w", shared.ErrInterrupted, service, what, err)
	}
	return fmt.Errorf("%w: %s %s: %w", shared.ErrFetch, service, what, err)
}

// reconcile classifies a single source track, favoriting its match unless this is a dry run.
func (e *FavoritesEngine) reconcile(ctx context.Context, track models.Track, index models.FavoritesIndex, claims *claimSet) SyncOutcome {
	outcome := SyncOutcome{Track: track}

	if e.opts.SkipExisting && track.DestinationID != "" && index.Contains(track.DestinationID) {
		outcome.Kind = AlreadyFavorited
		outcome.CandidateID = track.DestinationID
		return outcome
	}

	candidates, err := e.dest.Search(ctx, track.Title, track.Artist)
	if err != nil {
		outcome.Kind = FailedToAdd
		outcome.Err = fmt.Errorf("search failed: %w", err)
		return outcome
	}

	best, ok := e.matcher.Best(track, candidates)
	if !ok {
		outcome.Kind = NotFound
		return outcome
	}

	outcome.CandidateID = best.CandidateID
	outcome.CandidateTitle = best.Title
	outcome.CandidateArtist = best.Artist
	outcome.Score = best.Score

	if !e.matcher.Accept(best.Score) {
		outcome.Kind = NoGoodMatch
		outcome.Err = fmt.Errorf("%w: best score %.2f below %.2f", shared.ErrNoMatch, best.Score, e.matcher.Threshold)
		return outcome
	}
	if e.opts.SkipExisting && index.Contains(best.CandidateID) {
		outcome.Kind = AlreadyFavorited
		return outcome
	}

	cl, owner := claims.TryClaim(best.CandidateID)
	if !owner {
		if err := cl.wait(); err != nil {
			outcome.Kind = FailedToAdd
			outcome.Err = fmt.Errorf("duplicate of a failed favorite: %w", err)
			return outcome
		}
		outcome.Kind = AlreadyFavorited
		return outcome
	}

	if e.opts.DryRun {
		cl.resolve(nil)
		outcome.Kind = Favorited
		outcome.DryRun = true
		return outcome
	}

	err = e.dest.AddFavorite(ctx, best.CandidateID)
	cl.resolve(err)
	if err != nil {
		outcome.Kind = FailedToAdd
		outcome.Err = err
		return outcome
	}
	outcome.Kind = Favorited
	return outcome
}

// cacheTracks stores tracks silently; cache failures are only logged.
func (e *FavoritesEngine) cacheTracks(logger *log.Logger, runID, service string, tracks ...models.Track) {
	if e.cacher == nil {
		return
	}
	for _, t := range tracks {
		if err := e.cacher.CacheTrack(runID, service, t); err != nil {
			logger.Debug("failed to cache track", "service", service, "id", t.ID, "error", err)
		}
	}
}

// syncRun holds the state of one Sync call.
type syncRun struct {
	engine   *FavoritesEngine
	logger   *log.Logger
	index    models.FavoritesIndex
	claims   *claimSet
	total    int
	reporter Reporter
	progress chan<- ProgressUpdate
	result   *SyncResult
}

// sequential processes tracks in source order, checking for cancellation between tracks.
func (r *syncRun) sequential(ctx context.Context, tracks []models.Track) {
	work := context.WithoutCancel(ctx)
	for _, track := range tracks {
		if ctx.Err() != nil {
			r.result.Interrupted = true
			return
		}
		r.emit(r.engine.reconcile(work, track, r.index, r.claims))
	}
}

// pooled processes tracks with a bounded worker pool; outcomes arrive in completion order.
func (r *syncRun) pooled(ctx context.Context, tracks []models.Track) {
	work := context.WithoutCancel(ctx)
	jobs := make(chan models.Track)
	results := make(chan SyncOutcome, r.engine.opts.Workers)

	var interrupted atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < r.engine.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for track := range jobs {
				results <- r.engine.reconcile(work, track, r.index, r.claims)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, track := range tracks {
			if ctx.Err() != nil {
				interrupted.Store(true)
				return
			}
			select {
			case <-ctx.Done():
				interrupted.Store(true)
				return
			case jobs <- track:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		r.emit(outcome)
	}
	r.result.Interrupted = interrupted.Load()
}

// emit records an outcome and forwards it to the reporter. Only called from the Sync goroutine.
func (r *syncRun) emit(o SyncOutcome) {
	r.result.Outcomes = append(r.result.Outcomes, o)
	r.result.Summary.Add(o)
	r.reporter.ReportOutcome(o)
	r.engine.sendProgress(r.progress, reconcileUpdate(r.result.Summary.Total, r.total, o))

	switch o.Kind {
	case FailedToAdd:
		r.logger.Warn("track failed", "track", o.Track.String(), "error", o.Err)
	case NotFound, NoGoodMatch:
		r.logger.Debug("track unmatched", "track", o.Track.String(), "outcome", o.Kind, "best_score", o.Score)
	case Favorited:
		r.logger.Debug("track favorited", "track", o.Track.String(), "candidate", o.CandidateID, "score", o.Score, "dry_run", o.DryRun)
		if !o.DryRun {
			r.engine.cacheTracks(r.logger, r.result.RunID, r.engine.dest.Name(), models.Track{
				ID:     o.CandidateID,
				Title:  o.CandidateTitle,
				Artist: o.CandidateArtist,
			})
		}
	}
}

type discardReporter struct{}

func (discardReporter) ReportOutcome(SyncOutcome) {}
func (discardReporter) ReportSummary(SyncSummary) {}
