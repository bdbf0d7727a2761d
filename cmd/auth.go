package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/favsync/internal/server"
	"github.com/desertthunder/favsync/internal/services"
	"github.com/desertthunder/favsync/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultAuthTimeout = 5 * time.Minute

// AuthSpotify runs the OAuth2 authorization code flow and stores the tokens in the config file.
func (r *Runner) AuthSpotify(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	creds := config.Credentials.Spotify
	if creds.RedirectURI == "" {
		creds.RedirectURI = services.DefaultRedirectURI
	}

	spotify, err := services.NewSpotifyService(creds, config.HTTP)
	if err != nil {
		return fmt.Errorf("%w (set credentials.spotify.client_id and client_secret in %s)", err, r.configPath)
	}
	spotify.SetLogger(r.logger)

	addr, path, err := callbackAddress(creds.RedirectURI, config.Server)
	if err != nil {
		return err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state: %w", err)
	}

	authURL := spotify.GetAuthURL(state)
	r.writePlain("Open this URL to authorize favsync:\n\n  %s\n\n", authURL)
	if !cmd.Bool("no-browser") {
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	handler := server.NewOAuthHandler(spotify.Exchange, state, path)
	token, err := server.WaitForCallback(waitCtx, addr, handler, r.logger)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	return r.writePlain("✓ Spotify authorization saved to %s\n", r.configPath)
}

// callbackAddress derives the listen address and callback path from the redirect URI.
// The [server] table supplies the host or port when the URI omits them.
func callbackAddress(redirectURI string, cfg shared.ServerConfig) (string, string, error) {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: redirect_uri %q", shared.ErrInvalidConfig, redirectURI)
	}

	host := u.Hostname()
	if host == "" {
		host = cfg.Host
	}
	port := u.Port()
	if port == "" {
		port = strconv.Itoa(cfg.Port)
	}

	path := u.Path
	if path == "" {
		path = "/callback"
	}
	return net.JoinHostPort(host, port), path, nil
}

// AuthStatus checks the YouTube Music proxy by calling its /health endpoint.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	r.logger.Info("checking proxy health", "url", config.Credentials.YouTube.ProxyURL)

	youtube := services.NewYouTubeService(config.Credentials.YouTube, config.HTTP, config.Sync.SearchLimit)
	youtube.SetLogger(r.logger)

	health, err := youtube.Health(ctx)
	if err != nil {
		return err
	}

	status := health.Status
	if status == "" {
		status = "unknown"
	}

	r.writePlain("✓ Service is healthy\n")
	r.writePlain("Status: %s\n", status)
	if health.Authenticated {
		return r.writePlain("Authentication: ✓ Authenticated\n")
	}
	return r.writePlain("Authentication: ✗ Not authenticated\n")
}
