package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/orbit-drive/orbit/internal/models"
)

func TestNewAppConfig(t *testing.T) {
	cfg := NewAppConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel info, got %s", cfg.LogLevel)
	}
	if cfg.ViewMode != "grid" {
		t.Errorf("expected default ViewMode grid, got %s", cfg.ViewMode)
	}
	if cfg.Latency.Login != 800*time.Millisecond {
		t.Errorf("expected login latency 800ms, got %v", cfg.Latency.Login)
	}
	if cfg.Latency.Navigation != 400*time.Millisecond {
		t.Errorf("expected navigation latency 400ms, got %v", cfg.Latency.Navigation)
	}
	if cfg.Latency.Upload != 1500*time.Millisecond {
		t.Errorf("expected upload latency 1500ms, got %v", cfg.Latency.Upload)
	}
	if cfg.Upload.Policy != "reject" {
		t.Errorf("expected default upload policy reject, got %s", cfg.Upload.Policy)
	}
	if cfg.Settings.Backend != "file" {
		t.Errorf("expected default settings backend file, got %s", cfg.Settings.Backend)
	}
	if cfg.Live.Provider != "" {
		t.Errorf("expected no live provider by default, got %s", cfg.Live.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestSaveAndLoadAppConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "orbit.ini")

	cfg := NewAppConfig()
	cfg.LogLevel = "debug"
	cfg.ViewMode = "list"
	cfg.Latency.Login = 0
	cfg.Latency.Navigation = 25 * time.Millisecond
	cfg.Upload.Policy = "queue"
	cfg.Settings.Backend = "redis"
	cfg.Settings.RedisAddr = "cache:6380"
	cfg.Settings.RedisDB = 3
	cfg.Live = LiveConfig{
		Provider: "s3",
		Region:   "eu-west-1",
		Bucket:   "team-drive",
		Endpoint: "http://localhost:9000",
	}

	if err := SaveAppConfig(cfg, configPath); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(configPath)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("expected 0600 permissions, got %o", perm)
		}
	}
	if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file should not remain after save")
	}

	loaded, err := LoadAppConfig(configPath)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.LogLevel != "debug" || loaded.ViewMode != "list" {
		t.Errorf("unexpected [orbit] section: %+v", loaded)
	}
	if loaded.Latency.Login != 0 {
		t.Errorf("login latency = %v, want 0", loaded.Latency.Login)
	}
	if loaded.Latency.Navigation != 25*time.Millisecond {
		t.Errorf("navigation latency = %v, want 25ms", loaded.Latency.Navigation)
	}
	if loaded.Latency.Upload != 1500*time.Millisecond {
		t.Errorf("upload latency = %v, want 1.5s", loaded.Latency.Upload)
	}
	if loaded.Upload.Policy != "queue" {
		t.Errorf("policy = %s, want queue", loaded.Upload.Policy)
	}
	if loaded.Settings.Backend != "redis" || loaded.Settings.RedisAddr != "cache:6380" || loaded.Settings.RedisDB != 3 {
		t.Errorf("unexpected settings section: %+v", loaded.Settings)
	}
	if loaded.Live != cfg.Live {
		t.Errorf("live section mismatch: got %+v, want %+v", loaded.Live, cfg.Live)
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	cfg, err := LoadAppConfig(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if cfg.Upload.Policy != "reject" {
		t.Errorf("expected defaults, got policy %s", cfg.Upload.Policy)
	}
}

func TestLoadAppConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.ini")
	content := "[orbit.latency]\nupload_ms = 10\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.Latency.Upload != 10*time.Millisecond {
		t.Errorf("upload latency = %v, want 10ms", cfg.Latency.Upload)
	}
	if cfg.Latency.Login != 800*time.Millisecond {
		t.Errorf("unset keys should keep defaults, got login %v", cfg.Latency.Login)
	}
	if cfg.ViewMode != "grid" {
		t.Errorf("view mode = %s, want grid", cfg.ViewMode)
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr error
	}{
		{"defaults", func(*AppConfig) {}, nil},
		{"negative latency", func(c *AppConfig) { c.Latency.Upload = -time.Millisecond }, ErrInvalidLatency},
		{"unknown policy", func(c *AppConfig) { c.Upload.Policy = "overwrite" }, ErrInvalidPolicy},
		{"queue policy", func(c *AppConfig) { c.Upload.Policy = "queue" }, nil},
		{"unknown backend", func(c *AppConfig) { c.Settings.Backend = "sqlite" }, ErrInvalidBackend},
		{"unknown view mode", func(c *AppConfig) { c.ViewMode = "tiles" }, ErrInvalidViewMode},
		{"unknown provider", func(c *AppConfig) { c.Live.Provider = "gcs" }, ErrInvalidProvider},
		{"s3 without bucket", func(c *AppConfig) { c.Live.Provider = "s3" }, ErrMissingBucket},
		{"s3 with bucket", func(c *AppConfig) { c.Live.Provider = "s3"; c.Live.Bucket = "b" }, nil},
		{"azure without container", func(c *AppConfig) { c.Live.Provider = "azure" }, ErrMissingContainer},
		{"azure with container", func(c *AppConfig) { c.Live.Provider = "azure"; c.Live.Container = "c" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewAppConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveLogFile(t *testing.T) {
	if got := ResolveLogFile(""); got != "" {
		t.Errorf("empty setting should disable file logging, got %q", got)
	}
	if got := ResolveLogFile("default"); got != DefaultLogFile() {
		t.Errorf("default setting = %q, want %q", got, DefaultLogFile())
	}
	if got := ResolveLogFile("/var/log/orbit.log"); got != "/var/log/orbit.log" {
		t.Errorf("explicit path changed: %q", got)
	}
}

func TestResolveCredentials(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvAPIKey, "")

	explicit := models.Credentials{ClientID: "flag-id"}
	stored := models.Credentials{ClientID: "stored-id", APIKey: "stored-key"}

	got, source := ResolveCredentials(explicit, stored)
	if source != "flag" || got != explicit {
		t.Errorf("explicit credentials should win, got %+v from %q", got, source)
	}

	got, source = ResolveCredentials(models.Credentials{}, stored)
	if source != "settings" || got != stored {
		t.Errorf("stored credentials should be used, got %+v from %q", got, source)
	}

	got, source = ResolveCredentials(models.Credentials{}, models.Credentials{})
	if source != "" || !got.IsEmpty() {
		t.Errorf("expected empty credentials, got %+v from %q", got, source)
	}

	t.Setenv(EnvAPIKey, "env-key")
	got, source = ResolveCredentials(models.Credentials{}, models.Credentials{})
	if source != "environment" || got.APIKey != "env-key" {
		t.Errorf("expected environment credentials, got %+v from %q", got, source)
	}
}
