// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// syncCommand reconciles Spotify saved tracks into YouTube Music favorites.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Favorite every Spotify saved track on YouTube Music",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "credentials",
				Usage: "Read the [credentials] table from this file instead of --config",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Match tracks without favoriting anything",
			},
			&cli.BoolFlag{
				Name:  "skip-existing",
				Usage: "Fetch existing favorites and skip tracks already favorited",
				Value: true,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of tracks reconciled concurrently (outcomes are reported out of order when > 1)",
			},
			&cli.StringFlag{
				Name:    "report",
				Aliases: []string{"o"},
				Usage:   "Write one CSV row per outcome to this file",
			},
			&cli.StringFlag{
				Name:  "only-failed",
				Usage: "Retry only the failed_to_add tracks of an earlier --report file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only print tracks that were not favorited",
			},
		},
		Action: r.Sync,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "spotify",
				Usage: "Authorize read access to your Spotify library using OAuth2",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the OAuth callback",
						Value: defaultAuthTimeout,
					},
				},
				Action: r.AuthSpotify,
			},
			{
				Name:   "status",
				Usage:  "Check the YouTube Music proxy (calls /health)",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// cacheCommand inspects the local track cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect tracks cached during sync runs",
		Commands: []*cli.Command{
			{
				Name:  "tracks",
				Usage: "List cached tracks",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:  "service",
						Usage: "Only list tracks from this service (Spotify or YouTube Music)",
					},
					&cli.StringFlag{
						Name:  "run",
						Usage: "Only list tracks cached by this run id",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to list",
						Value: 50,
					},
				},
				Action: r.CacheTracks,
			},
			{
				Name:  "clear",
				Usage: "Delete cached tracks of a service",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "service",
						Usage:    "Service whose tracks are deleted",
						Required: true,
					},
				},
				Action: r.CacheClear,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config file from the built-in template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the track cache and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}
