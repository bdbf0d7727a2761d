package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/favsync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

// Exit statuses of the favsync binary.
const (
	exitOK          = 0
	exitFatal       = 1
	exitPartial     = 2
	exitInterrupted = 130
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	logOut     io.Writer
	logCloser  io.Closer
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	LogOutput  io.Writer
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(opts.LogOutput)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		logOut:     opts.LogOutput,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		syncCommand, authCommand, cacheCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig reads the config file at path, falling back to defaults when it does not exist,
// and rebuilds the logger from its [log] table.
func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	if path == "" {
		path = defaultConfigPath
	}
	r.configPath = path

	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return nil, err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("config file not found, using defaults", "path", path)
	} else {
		return nil, fmt.Errorf("%w: %v", shared.ErrMissingConfig, err)
	}
	r.config = config

	logger, closer := shared.NewRunLogger(r.logOut, config.Log)
	r.closeLog()
	r.logger, r.logCloser = logger, closer

	return config, nil
}

// loadCredentials replaces the configured credentials with the [credentials] table of path.
func (r *Runner) loadCredentials(path string) error {
	if path == "" {
		return nil
	}
	creds, err := shared.LoadCredentials(path)
	if err != nil {
		return err
	}
	r.config.Credentials = *creds
	r.logger.Debug("loaded credentials", "path", path)
	return nil
}

// saveTokens stores an OAuth token in the config and persists it when a config path is known.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.config == nil {
		return fmt.Errorf("config is nil")
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to update spotify configuration: %w", err)
	}

	if r.configPath == "" {
		return nil
	}

	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.logger.Info("saved spotify tokens", "path", r.configPath)
	return nil
}

func (r *Runner) closeLog() {
	if r.logCloser == nil {
		return
	}
	if err := r.logCloser.Close(); err != nil {
		r.logger.Warn("failed to close log file", "error", err)
	}
	r.logCloser = nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// exitCode maps the error returned by a command to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, shared.ErrInterrupted):
		return exitInterrupted
	case errors.Is(err, shared.ErrPartialFailure):
		return exitPartial
	default:
		return exitFatal
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}
