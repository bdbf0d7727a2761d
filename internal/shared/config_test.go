package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./favsync.db" {
			t.Errorf("expected database path ./favsync.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.YouTube.ProxyURL != "http://127.0.0.1:8080" {
			t.Errorf("expected youtube proxy URL http://127.0.0.1:8080, got %s", config.Credentials.YouTube.ProxyURL)
		}

		if !config.Sync.SkipExisting {
			t.Error("expected skip_existing to default to true")
		}

		if config.Sync.DryRun {
			t.Error("expected dry_run to default to false")
		}

		if config.HTTP.RetryBaseDelay.Duration != 500*time.Millisecond {
			t.Errorf("expected retry base delay 500ms, got %v", config.HTTP.RetryBaseDelay)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[sync]
dry_run = true
skip_existing = false
workers = 4

[http]
retry_max_delay = "2s"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
refresh_token = "refresh"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if !config.Sync.DryRun || config.Sync.SkipExisting || config.Sync.Workers != 4 {
			t.Errorf("unexpected sync config: %+v", config.Sync)
		}

		if config.HTTP.RetryMaxDelay.Duration != 2*time.Second {
			t.Errorf("expected retry max delay 2s, got %v", config.HTTP.RetryMaxDelay)
		}

		if config.HTTP.RetryAttempts != 4 {
			t.Errorf("expected unset keys to keep defaults, got retry_attempts=%d", config.HTTP.RetryAttempts)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[sync]\nworkers = 0\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[http]\ntimeout = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected error for invalid duration")
		}
	})

	t.Run("SaveConfig round trips tokens", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		if err := config.Credentials.Spotify.Update(&oauth2.Token{AccessToken: "access", RefreshToken: "refresh"}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("SaveConfig() error = %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if loaded.Credentials.Spotify.RefreshToken != "refresh" {
			t.Errorf("expected refresh token to persist, got %q", loaded.Credentials.Spotify.RefreshToken)
		}
		if loaded.HTTP.Timeout.Duration != 30*time.Second {
			t.Errorf("expected timeout to persist, got %v", loaded.HTTP.Timeout)
		}
	})
}

func TestLoadCredentials(t *testing.T) {
	t.Run("reads credentials table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "credentials.toml")
		content := `[credentials.spotify]
client_id = "id"
client_secret = "secret"
refresh_token = "token"

[credentials.youtube]
proxy_url = "http://proxy:8080"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write credentials: %v", err)
		}

		creds, err := LoadCredentials(path)
		if err != nil {
			t.Fatalf("LoadCredentials() error = %v", err)
		}
		if creds.Spotify.RefreshToken != "token" || creds.YouTube.ProxyURL != "http://proxy:8080" {
			t.Errorf("unexpected credentials: %+v", creds)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCredentials(filepath.Join(t.TempDir(), "missing.toml"))
		if !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("token is expired so refresh happens first", func(t *testing.T) {
		token := SpotifyConfig{AccessToken: "stale", RefreshToken: "r"}.Token()
		if token.Valid() {
			t.Error("expected stored token to be treated as expired")
		}
	})

	t.Run("update rejects empty token", func(t *testing.T) {
		var s SpotifyConfig
		if err := s.Update(&oauth2.Token{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}
