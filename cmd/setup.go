package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/favsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded config template to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. Set credentials.spotify.client_id and client_secret\n")
	return r.writePlain("2. Run 'favsync auth spotify --config %s'\n", path)
}

// SetupDatabase initializes the track cache and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenCache(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Track cache ready at %s\n", config.Database.Path)
}
