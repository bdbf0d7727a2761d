package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/favsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "favsync",
		Usage:    "Sync Spotify saved tracks to YouTube Music favorites",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	err := app.Run(ctx, os.Args)
	runner.closeLog()

	code := exitCode(err)
	switch code {
	case exitOK:
	case exitFatal:
		runner.logger.Error("application error", "error", err)
	default:
		runner.logger.Warn("sync finished early or with failures", "error", err, "exit", code)
	}
	stop()
	os.Exit(code)
}
