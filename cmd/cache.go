package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/favsync/internal/formatter"
	"github.com/desertthunder/favsync/internal/repositories"
	"github.com/desertthunder/favsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// CacheTracks lists tracks cached by previous sync runs.
func (r *Runner) CacheTracks(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openTrackRepository(cmd.String("config"))
	if err != nil {
		return err
	}
	defer closeDB()

	filter := repositories.TrackFilter{
		Service: cmd.String("service"),
		RunID:   cmd.String("run"),
		Limit:   cmd.Int("limit"),
	}

	tracks, err := repo.List(filter)
	if err != nil {
		return err
	}
	total, err := repo.Count(filter)
	if err != nil {
		return err
	}

	if len(tracks) == 0 {
		return r.writePlain("No cached tracks\n")
	}

	if err := r.writePlain("%s\n", formatter.CachedTracksTable(tracks)); err != nil {
		return err
	}

	return r.writePlain("\n%d of %d cached tracks\n", len(tracks), total)
}

// CacheClear deletes the cached tracks of one service.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.openTrackRepository(cmd.String("config"))
	if err != nil {
		return err
	}
	defer closeDB()

	service := cmd.String("service")
	n, err := repo.DeleteByService(service)
	if err != nil {
		return err
	}

	r.logger.Info("cleared track cache", "service", service, "deleted", n)
	return r.writePlain("✓ Deleted %d cached tracks for %s\n", n, service)
}

func (r *Runner) openTrackRepository(configPath string) (*repositories.TrackRepository, func(), error) {
	config, err := r.loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if config.Database.Path == "" {
		return nil, nil, fmt.Errorf("%w: database.path is empty", shared.ErrInvalidConfig)
	}

	db, err := shared.OpenCache(config.Database)
	if err != nil {
		return nil, nil, err
	}

	return repositories.NewTrackRepository(db), func() { db.Close() }, nil
}
