package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/favsync/internal/formatter"
	"github.com/desertthunder/favsync/internal/repositories"
	"github.com/desertthunder/favsync/internal/services"
	"github.com/desertthunder/favsync/internal/shared"
	"github.com/desertthunder/favsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// syncJob is everything one favorites sync needs besides the catalogs.
type syncJob struct {
	opts       tasks.Options
	quiet      bool
	reportPath string
	cacher     tasks.TrackCacher
}

// Sync reconciles Spotify saved tracks into YouTube Music favorites.
//
// The summary is always rendered; the returned error carries [shared.ErrPartialFailure]
// or [shared.ErrInterrupted] so main can pick the exit status.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := r.loadCredentials(cmd.String("credentials")); err != nil {
		return err
	}

	opts, err := syncOptions(cmd, config.Sync)
	if err != nil {
		return err
	}

	var retryIDs []string
	if path := cmd.String("only-failed"); path != "" {
		if retryIDs, err = formatter.FailedSourceIDs(path); err != nil {
			return err
		}
		if len(retryIDs) == 0 {
			return r.writePlain("No failed tracks in %s\n", path)
		}
		r.logger.Info("retrying failed tracks", "report", path, "count", len(retryIDs))
	}

	spotify, err := services.NewSpotifyService(config.Credentials.Spotify, config.HTTP)
	if err != nil {
		return err
	}
	spotify.SetLogger(r.logger)
	if err := spotify.Authenticate(ctx); err != nil {
		return fmt.Errorf("%w (run `favsync auth spotify` first)", err)
	}

	youtube := services.NewYouTubeService(config.Credentials.YouTube, config.HTTP, config.Sync.SearchLimit)
	youtube.SetLogger(r.logger)

	job := syncJob{
		opts:       opts,
		quiet:      cmd.Bool("quiet"),
		reportPath: cmd.String("report"),
	}

	if config.Database.Path != "" {
		db, err := shared.OpenCache(config.Database)
		if err != nil {
			r.logger.Warn("track cache unavailable, continuing without it", "error", err)
		} else {
			defer db.Close()
			job.cacher = repositories.NewTrackCacheAdapter(repositories.NewTrackRepository(db))
		}
	}

	var source services.SourceCatalog = spotify
	if retryIDs != nil {
		source = tasks.OnlyTracks(spotify, retryIDs...)
	}

	return r.runSync(ctx, source, youtube, job)
}

// syncOptions resolves engine options from the [sync] table, overridden by explicitly set flags.
func syncOptions(cmd *cli.Command, cfg shared.SyncConfig) (tasks.Options, error) {
	opts := tasks.Options{
		DryRun:       cfg.DryRun,
		SkipExisting: cfg.SkipExisting,
		Workers:      cfg.Workers,
	}

	if cmd.IsSet("dry-run") {
		opts.DryRun = cmd.Bool("dry-run")
	}
	if cmd.IsSet("skip-existing") {
		opts.SkipExisting = cmd.Bool("skip-existing")
	}
	if cmd.IsSet("workers") {
		opts.Workers = cmd.Int("workers")
	}

	if opts.Workers < 1 {
		return opts, fmt.Errorf("%w: --workers must be at least 1, got %d", shared.ErrInvalidFlag, opts.Workers)
	}
	return opts, nil
}

func (r *Runner) runSync(ctx context.Context, source services.SourceCatalog, dest services.DestinationCatalog, job syncJob) error {
	engine := tasks.NewFavoritesEngine(source, dest, job.opts)
	engine.SetLogger(r.logger)
	if job.cacher != nil {
		engine.SetTrackCacher(job.cacher)
	}

	if job.opts.DryRun {
		r.writePlain("Dry run: no favorites will be added\n\n")
	}

	progressCh := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.Reconcile:
				r.logger.Debug(update.Message, "step", update.Step, "total", update.Total)
			case tasks.Report:
			default:
				r.logger.Info(update.Message)
			}
		}
	}()

	result, err := engine.Sync(ctx, formatter.NewTextReporter(r.output, job.quiet), progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	if job.reportPath != "" {
		if err := formatter.WriteOutcomesCSV(result.Outcomes, job.reportPath); err != nil {
			r.logger.Error("failed to write report", "path", job.reportPath, "error", err)
		} else {
			r.logger.Info("wrote outcome report", "path", job.reportPath, "rows", len(result.Outcomes))
		}
	}

	return result.Err()
}
