package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/favsync/internal/formatter"
	"github.com/desertthunder/favsync/internal/models"
	"github.com/desertthunder/favsync/internal/repositories"
	"github.com/desertthunder/favsync/internal/services"
	"github.com/desertthunder/favsync/internal/shared"
	"github.com/desertthunder/favsync/internal/tasks"
	tu "github.com/desertthunder/favsync/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func newTestRunner(output io.Writer) *Runner {
	return NewRunner(RunnerOpts{
		Logger:    shared.NewLogger(io.Discard),
		LogOutput: io.Discard,
		Output:    output,
	})
}

// writeConfig saves a default config, adjusted by edit, to a temporary file.
func writeConfig(t *testing.T, edit func(*shared.Config)) string {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "favsync.db")
	if edit != nil {
		edit(config)
	}
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := shared.SaveConfig(path, config); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestExitCode(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want int
	}{
		{name: "success", err: nil, want: 0},
		{name: "fetch failure", err: fmt.Errorf("%w: spotify", shared.ErrFetch), want: 1},
		{name: "config", err: shared.ErrInvalidConfig, want: 1},
		{name: "partial failure", err: fmt.Errorf("%w: 1 of 5", shared.ErrPartialFailure), want: 2},
		{name: "interrupted", err: fmt.Errorf("%w after 200 tracks", shared.ErrInterrupted), want: 130},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(io.Discard)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output, ConfigPath: "x.toml"})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.configPath != "x.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with nil dependencies uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil || runner.logger == nil || runner.output == nil || runner.logOut == nil {
				t.Errorf("expected defaults, got %+v", runner)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := newTestRunner(nil).register()

		var names []string
		for _, cmd := range commands {
			names = append(names, cmd.Name)
		}
		if got := strings.Join(names, ","); got != "sync,auth,cache,setup" {
			t.Errorf("unexpected commands %s", got)
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		if err := newTestRunner(output).writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}

		err := newTestRunner(&tu.FWriter{}).writePlain("test")
		if err == nil || !strings.Contains(err.Error(), "failed to write output") {
			t.Errorf("expected write error, got %v", err)
		}

		limited := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
		runner := newTestRunner(&limited)
		if err := runner.writePlain("first"); err != nil {
			t.Fatalf("expected first write to succeed, got %v", err)
		}
		if err := runner.writePlain("second"); err == nil {
			t.Error("expected second write to fail")
		}
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("missing file uses defaults", func(t *testing.T) {
			runner := newTestRunner(nil)
			path := filepath.Join(t.TempDir(), "missing.toml")

			config, err := runner.loadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Sync.Workers != 1 || !config.Sync.SkipExisting {
				t.Errorf("expected default sync settings, got %+v", config.Sync)
			}
			if runner.configPath != path {
				t.Errorf("expected configPath %s, got %s", path, runner.configPath)
			}
		})

		t.Run("reads file", func(t *testing.T) {
			path := writeConfig(t, func(c *shared.Config) { c.Sync.Workers = 4 })
			runner := newTestRunner(nil)

			config, err := runner.loadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.Sync.Workers != 4 || runner.config != config {
				t.Errorf("expected workers = 4 on runner config, got %+v", config.Sync)
			}
		})

		t.Run("invalid file", func(t *testing.T) {
			path := writeConfig(t, func(c *shared.Config) { c.Sync.Workers = 0 })
			if _, err := newTestRunner(nil).loadConfig(path); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("loadCredentials", func(t *testing.T) {
		credsPath := writeConfig(t, func(c *shared.Config) {
			c.Credentials.Spotify.ClientID = "from-credentials"
			c.Credentials.YouTube.ProxyURL = "http://proxy.test"
		})

		runner := newTestRunner(nil)
		if _, err := runner.loadConfig(filepath.Join(t.TempDir(), "none.toml")); err != nil {
			t.Fatal(err)
		}
		if err := runner.loadCredentials(credsPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.config.Credentials.Spotify.ClientID != "from-credentials" {
			t.Errorf("expected credentials override, got %+v", runner.config.Credentials)
		}

		err := runner.loadCredentials(filepath.Join(t.TempDir(), "none.toml"))
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			configPath := writeConfig(t, func(c *shared.Config) {
				c.Credentials.Spotify.ClientID = "test_id"
				c.Credentials.Spotify.ClientSecret = "test_secret"
			})

			runner := newTestRunner(nil)
			if _, err := runner.loadConfig(configPath); err != nil {
				t.Fatal(err)
			}

			token := &oauth2.Token{AccessToken: "new_access_token", RefreshToken: "new_refresh_token"}
			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}
			if loaded.Credentials.Spotify.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be updated, got %s", loaded.Credentials.Spotify.RefreshToken)
			}
			if loaded.Credentials.Spotify.ClientID != "test_id" {
				t.Errorf("expected client id to survive, got %s", loaded.Credentials.Spotify.ClientID)
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := newTestRunner(nil)
			runner.config = nil

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("handles empty configPath", func(t *testing.T) {
			runner := newTestRunner(nil)
			if err := runner.saveTokens(&oauth2.Token{AccessToken: "new_token"}); err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}
			if runner.config.Credentials.Spotify.AccessToken != "new_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			runner := newTestRunner(nil)
			runner.configPath = filepath.Join(t.TempDir(), "missing-dir", "config.toml")

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})

		t.Run("handles Update error", func(t *testing.T) {
			err := newTestRunner(nil).saveTokens(nil)
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "failed to update spotify configuration") {
				t.Errorf("expected update error, got %v", err)
			}
		})
	})
}

func TestSyncOptions(t *testing.T) {
	defaults := shared.SyncConfig{SkipExisting: true, Workers: 1}

	tc := []struct {
		name    string
		cfg     shared.SyncConfig
		args    []string
		want    tasks.Options
		wantErr error
	}{
		{name: "config defaults", cfg: defaults, want: tasks.Options{SkipExisting: true, Workers: 1}},
		{
			name: "flags override",
			cfg:  defaults,
			args: []string{"--dry-run", "--skip-existing=false", "--workers", "4"},
			want: tasks.Options{DryRun: true, Workers: 4},
		},
		{
			name: "config dry run kept without flag",
			cfg:  shared.SyncConfig{DryRun: true, Workers: 2},
			want: tasks.Options{DryRun: true, Workers: 2},
		},
		{name: "zero workers", cfg: defaults, args: []string{"--workers", "0"}, wantErr: shared.ErrInvalidFlag},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			var got tasks.Options
			cmd := syncCommand(newTestRunner(nil))
			cmd.Action = func(ctx context.Context, c *cli.Command) error {
				var err error
				got, err = syncOptions(c, tt.cfg)
				return err
			}

			err := cmd.Run(context.Background(), append([]string{"sync"}, tt.args...))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("options = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func syncFixture() (*tu.StubSource, *tu.StubDestination) {
	source := &tu.StubSource{Tracks: []models.Track{
		{ID: "sp1", Title: "Hey Jude", Artist: "The Beatles"},
		{ID: "sp2", Title: "Comfortably Numb", Artist: "Pink Floyd"},
		{ID: "sp3", Title: "Unreleased Demo", Artist: "Nobody"},
	}}
	dest := &tu.StubDestination{
		Favorites: []string{"yt2"},
		Results: map[string][]models.Candidate{
			"Hey Jude":         {{ID: "yt1", Title: "Hey Jude", Artist: "The Beatles"}},
			"Comfortably Numb": {{ID: "yt2", Title: "Comfortably Numb", Artist: "Pink Floyd"}},
		},
	}
	return source, dest
}

func TestRunSync(t *testing.T) {
	t.Run("writes report and succeeds", func(t *testing.T) {
		source, dest := syncFixture()
		output := &bytes.Buffer{}
		report := filepath.Join(t.TempDir(), "report.csv")

		err := newTestRunner(output).runSync(context.Background(), source, dest, syncJob{
			opts:       tasks.Options{SkipExisting: true, Workers: 1},
			reportPath: report,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := dest.Added(); len(got) != 1 || got[0] != "yt1" {
			t.Errorf("expected only yt1 to be favorited, got %v", got)
		}

		csv := tu.MustReadFile(t, report)
		for _, want := range []string{"favorited,sp1", "already_favorited,sp2", "not_found,sp3"} {
			if !strings.Contains(csv, want) {
				t.Errorf("report missing %q:\n%s", want, csv)
			}
		}
		if !strings.Contains(output.String(), "Sync Summary") {
			t.Errorf("expected summary in output, got %s", output.String())
		}
	})

	t.Run("dry run never favorites", func(t *testing.T) {
		source, dest := syncFixture()
		output := &bytes.Buffer{}

		err := newTestRunner(output).runSync(context.Background(), source, dest, syncJob{
			opts: tasks.Options{DryRun: true, SkipExisting: true, Workers: 2},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(dest.Added()) != 0 {
			t.Errorf("expected no favorites in dry run, got %v", dest.Added())
		}
		if !strings.Contains(output.String(), "Dry run") {
			t.Errorf("expected dry run banner, got %s", output.String())
		}
	})

	t.Run("partial failure", func(t *testing.T) {
		source, dest := syncFixture()
		dest.Reject = map[string]error{"yt1": &services.MutationError{ID: "yt1", StatusCode: 403}}

		err := newTestRunner(io.Discard).runSync(context.Background(), source, dest, syncJob{
			opts: tasks.Options{SkipExisting: true, Workers: 1},
		})
		if !errors.Is(err, shared.ErrPartialFailure) || exitCode(err) != 2 {
			t.Errorf("expected partial failure, got %v", err)
		}
	})

	t.Run("retry failed tracks from a report", func(t *testing.T) {
		source, dest := syncFixture()
		dest.Reject = map[string]error{"yt1": &services.MutationError{ID: "yt1", StatusCode: 503}}
		report := filepath.Join(t.TempDir(), "report.csv")
		runner := newTestRunner(io.Discard)

		err := runner.runSync(context.Background(), source, dest, syncJob{
			opts:       tasks.Options{SkipExisting: true, Workers: 1},
			reportPath: report,
		})
		if !errors.Is(err, shared.ErrPartialFailure) {
			t.Fatalf("expected partial failure, got %v", err)
		}

		ids, err := formatter.FailedSourceIDs(report)
		if err != nil || len(ids) != 1 || ids[0] != "sp1" {
			t.Fatalf("expected [sp1], got %v (%v)", ids, err)
		}

		dest.Reject = nil
		retry := filepath.Join(t.TempDir(), "retry.csv")
		err = runner.runSync(context.Background(), tasks.OnlyTracks(source, ids...), dest, syncJob{
			opts:       tasks.Options{SkipExisting: true, Workers: 1},
			reportPath: retry,
		})
		if err != nil {
			t.Fatalf("expected retry to succeed, got %v", err)
		}
		if got := dest.Added(); len(got) != 1 || got[0] != "yt1" {
			t.Errorf("expected only yt1 to be favorited, got %v", got)
		}
		if csv := tu.MustReadFile(t, retry); strings.Count(csv, "\n") != 2 || !strings.Contains(csv, "favorited,sp1") {
			t.Errorf("expected a single retried row:\n%s", csv)
		}
	})

	t.Run("interrupted", func(t *testing.T) {
		source, dest := syncFixture()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := newTestRunner(io.Discard).runSync(ctx, source, dest, syncJob{
			opts: tasks.Options{SkipExisting: false, Workers: 1},
		})
		if !errors.Is(err, shared.ErrInterrupted) || exitCode(err) != 130 {
			t.Errorf("expected interruption, got %v", err)
		}
	})

	t.Run("fetch failure is fatal", func(t *testing.T) {
		source, dest := syncFixture()
		source.Err = &services.FetchError{Service: "Spotify", Op: "saved tracks", Err: errors.New("boom")}

		err := newTestRunner(io.Discard).runSync(context.Background(), source, dest, syncJob{
			opts: tasks.Options{SkipExisting: true, Workers: 1},
		})
		if !errors.Is(err, shared.ErrFetch) || exitCode(err) != 1 {
			t.Errorf("expected fetch failure, got %v", err)
		}
	})
}

func TestCallbackAddress(t *testing.T) {
	cfg := shared.ServerConfig{Host: "127.0.0.1", Port: 3000}

	tc := []struct {
		uri      string
		wantAddr string
		wantPath string
		wantErr  bool
	}{
		{uri: "http://127.0.0.1:3000/callback", wantAddr: "127.0.0.1:3000", wantPath: "/callback"},
		{uri: "http://localhost:8888/spotify/cb", wantAddr: "localhost:8888", wantPath: "/spotify/cb"},
		{uri: "http://127.0.0.1", wantAddr: "127.0.0.1:3000", wantPath: "/callback"},
		{uri: "not a url", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.uri, func(t *testing.T) {
			addr, path, err := callbackAddress(tt.uri, cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if addr != tt.wantAddr || path != tt.wantPath {
				t.Errorf("got (%s, %s), want (%s, %s)", addr, path, tt.wantAddr, tt.wantPath)
			}
		})
	}
}

func TestAuthStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok","authenticated":true}`)
	}))
	defer srv.Close()

	path := writeConfig(t, func(c *shared.Config) { c.Credentials.YouTube.ProxyURL = srv.URL })
	output := &bytes.Buffer{}

	cmd := authCommand(newTestRunner(output))
	if err := cmd.Run(context.Background(), []string{"auth", "status", "--config", path}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, want := range []string{"Service is healthy", "Status: ok", "✓ Authenticated"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("expected %q in output, got %s", want, output.String())
		}
	}
}

func TestSetupAndCache(t *testing.T) {
	ctx := context.Background()

	t.Run("setup config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		cmd := setupCommand(newTestRunner(io.Discard))

		if err := cmd.Run(ctx, []string{"setup", "config", "--config", path}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)

		if err := setupCommand(newTestRunner(io.Discard)).Run(ctx, []string{"setup", "config", "--config", path}); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("setup database then list and clear cache", func(t *testing.T) {
		path := writeConfig(t, nil)
		if err := setupCommand(newTestRunner(io.Discard)).Run(ctx, []string{"setup", "database", "--config", path}); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		config, err := shared.LoadConfig(path)
		if err != nil {
			t.Fatal(err)
		}
		tu.AssertFileExists(t, config.Database.Path)

		db, err := shared.OpenCache(config.Database)
		if err != nil {
			t.Fatal(err)
		}
		repo := repositories.NewTrackRepository(db)
		track := models.Track{ID: "sp1", Title: "Hey Jude", Artist: "The Beatles"}
		if err := repo.Upsert(models.NewCachedTrack("run-1234567890", "Spotify", track)); err != nil {
			t.Fatal(err)
		}
		db.Close()

		output := &bytes.Buffer{}
		if err := cacheCommand(newTestRunner(output)).Run(ctx, []string{"cache", "tracks", "--config", path}); err != nil {
			t.Fatalf("cache tracks failed: %v", err)
		}
		for _, want := range []string{"Hey Jude", "The Beatles", "run-1234", "1 of 1 cached tracks"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("expected %q in output, got %s", want, output.String())
			}
		}

		output.Reset()
		if err := cacheCommand(newTestRunner(output)).Run(ctx, []string{"cache", "clear", "--config", path, "--service", "Spotify"}); err != nil {
			t.Fatalf("cache clear failed: %v", err)
		}
		if !strings.Contains(output.String(), "Deleted 1 cached tracks") {
			t.Errorf("unexpected output %s", output.String())
		}
	})
}
