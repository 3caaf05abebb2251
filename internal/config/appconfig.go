// Package config provides configuration management for Orbit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/orbit-drive/orbit/internal/constants"
)

// AppConfig is the application configuration, stored as INI.
//
// Config file location: ~/.config/orbit/orbit.ini
//
// INI format:
//
//	[orbit]
//	log_level = info
//	log_file =
//	view_mode = grid
//
//	[orbit.latency]
//	login_ms = 800
//	navigation_ms = 400
//	upload_ms = 1500
//
//	[orbit.upload]
//	policy = reject
//
//	[orbit.settings]
//	backend = file
//	path = ~/.config/orbit/settings.json
//	redis_addr = 127.0.0.1:6379
//	redis_db = 0
//
//	[orbit.live]
//	provider = s3
//	region = us-east-1
//	bucket = my-drive
//	endpoint =
//	container =
//	account_url =
type AppConfig struct {
	LogLevel string
	LogFile  string
	ViewMode string

	Latency  LatencyConfig
	Upload   UploadConfig
	Settings SettingsConfig
	Live     LiveConfig
}

// LatencyConfig holds the simulated latencies. Zero disables the delay.
type LatencyConfig struct {
	Login      time.Duration
	Navigation time.Duration
	Upload     time.Duration
}

// UploadConfig holds the single-slot policy.
type UploadConfig struct {
	// Policy is "reject" (second upload fails while one is in flight) or
	// "queue" (second upload waits for the slot).
	Policy string
}

// SettingsConfig selects the durable key-value backend for the connection record.
type SettingsConfig struct {
	Backend   string // "file" or "redis"
	Path      string // file backend location
	RedisAddr string
	RedisDB   int
}

// LiveConfig describes the remote storage used when credentials are present.
// An empty Provider means no live backend is reachable from this environment.
type LiveConfig struct {
	Provider   string // "", "s3" or "azure"
	Region     string
	Bucket     string
	Endpoint   string // optional S3-compatible endpoint
	Container  string // azure container
	AccountURL string // optional azure service URL override
}

// Validation errors
var (
	ErrInvalidLatency   = errors.New("latencies must not be negative")
	ErrInvalidPolicy    = errors.New("upload policy must be \"reject\" or \"queue\"")
	ErrInvalidBackend   = errors.New("settings backend must be \"file\" or \"redis\"")
	ErrInvalidProvider  = errors.New("live provider must be empty, \"s3\" or \"azure\"")
	ErrMissingBucket    = errors.New("bucket is required for the s3 provider")
	ErrMissingContainer = errors.New("container is required for the azure provider")
	ErrInvalidViewMode  = errors.New("view_mode must be \"grid\" or \"list\"")
)

// ConfigDirectory returns the Orbit configuration directory.
func ConfigDirectory() (string, error) {
	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		return filepath.Join(userProfile, ".config", "orbit"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "orbit"), nil
}

// DefaultAppConfigPath returns the default path for orbit.ini.
func DefaultAppConfigPath() (string, error) {
	dir, err := ConfigDirectory()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orbit.ini"), nil
}

// DefaultSettingsPath returns the default location of the file-backed settings store.
func DefaultSettingsPath() string {
	dir, err := ConfigDirectory()
	if err != nil {
		return filepath.Join(os.TempDir(), "orbit", constants.SettingsFileName)
	}
	return filepath.Join(dir, constants.SettingsFileName)
}

// NewAppConfig creates a new AppConfig with default values.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		LogLevel: "info",
		ViewMode: "grid",
		Latency: LatencyConfig{
			Login:      constants.LoginLatency,
			Navigation: constants.NavigationLatency,
			Upload:     constants.UploadLatency,
		},
		Upload: UploadConfig{
			Policy: constants.UploadPolicyReject,
		},
		Settings: SettingsConfig{
			Backend:   "file",
			Path:      DefaultSettingsPath(),
			RedisAddr: "127.0.0.1:6379",
		},
	}
}

// LoadAppConfig loads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := NewAppConfig()

	if path == "" {
		var err error
		path, err = DefaultAppConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	main := iniFile.Section("orbit")
	cfg.LogLevel = main.Key("log_level").MustString(cfg.LogLevel)
	cfg.LogFile = main.Key("log_file").String()
	cfg.ViewMode = main.Key("view_mode").MustString(cfg.ViewMode)

	latency := iniFile.Section("orbit.latency")
	cfg.Latency.Login = millis(latency.Key("login_ms").MustInt(int(cfg.Latency.Login.Milliseconds())))
	cfg.Latency.Navigation = millis(latency.Key("navigation_ms").MustInt(int(cfg.Latency.Navigation.Milliseconds())))
	cfg.Latency.Upload = millis(latency.Key("upload_ms").MustInt(int(cfg.Latency.Upload.Milliseconds())))

	cfg.Upload.Policy = iniFile.Section("orbit.upload").Key("policy").MustString(cfg.Upload.Policy)

	settings := iniFile.Section("orbit.settings")
	cfg.Settings.Backend = settings.Key("backend").MustString(cfg.Settings.Backend)
	cfg.Settings.Path = expandHome(settings.Key("path").MustString(cfg.Settings.Path))
	cfg.Settings.RedisAddr = settings.Key("redis_addr").MustString(cfg.Settings.RedisAddr)
	cfg.Settings.RedisDB = settings.Key("redis_db").MustInt(0)

	live := iniFile.Section("orbit.live")
	cfg.Live.Provider = live.Key("provider").String()
	cfg.Live.Region = live.Key("region").String()
	cfg.Live.Bucket = live.Key("bucket").String()
	cfg.Live.Endpoint = live.Key("endpoint").String()
	cfg.Live.Container = live.Key("container").String()
	cfg.Live.AccountURL = live.Key("account_url").String()

	return cfg, nil
}

// SaveAppConfig saves configuration to an INI file.
// Creates parent directories if they don't exist.
func SaveAppConfig(cfg *AppConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultAppConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name   string
		values [][2]string
	}{
		{"orbit", [][2]string{
			{"log_level", cfg.LogLevel},
			{"log_file", cfg.LogFile},
			{"view_mode", cfg.ViewMode},
		}},
		{"orbit.latency", [][2]string{
			{"login_ms", fmt.Sprintf("%d", cfg.Latency.Login.Milliseconds())},
			{"navigation_ms", fmt.Sprintf("%d", cfg.Latency.Navigation.Milliseconds())},
			{"upload_ms", fmt.Sprintf("%d", cfg.Latency.Upload.Milliseconds())},
		}},
		{"orbit.upload", [][2]string{
			{"policy", cfg.Upload.Policy},
		}},
		{"orbit.settings", [][2]string{
			{"backend", cfg.Settings.Backend},
			{"path", cfg.Settings.Path},
			{"redis_addr", cfg.Settings.RedisAddr},
			{"redis_db", fmt.Sprintf("%d", cfg.Settings.RedisDB)},
		}},
		{"orbit.live", [][2]string{
			{"provider", cfg.Live.Provider},
			{"region", cfg.Live.Region},
			{"bucket", cfg.Live.Bucket},
			{"endpoint", cfg.Live.Endpoint},
			{"container", cfg.Live.Container},
			{"account_url", cfg.Live.AccountURL},
		}},
	}

	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.values {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	// Write to a temporary file, then rename into place.
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// Validate checks the configuration. Returns nil if valid.
func (cfg *AppConfig) Validate() error {
	if cfg.Latency.Login < 0 || cfg.Latency.Navigation < 0 || cfg.Latency.Upload < 0 {
		return ErrInvalidLatency
	}

	switch cfg.ViewMode {
	case "grid", "list":
	default:
		return ErrInvalidViewMode
	}

	switch cfg.Upload.Policy {
	case constants.UploadPolicyReject, constants.UploadPolicyQueue:
	default:
		return ErrInvalidPolicy
	}

	switch cfg.Settings.Backend {
	case "file", "redis":
	default:
		return ErrInvalidBackend
	}

	switch strings.ToLower(cfg.Live.Provider) {
	case "":
	case "s3":
		if strings.TrimSpace(cfg.Live.Bucket) == "" {
			return ErrMissingBucket
		}
	case "azure":
		if strings.TrimSpace(cfg.Live.Container) == "" {
			return ErrMissingContainer
		}
	default:
		return ErrInvalidProvider
	}

	return nil
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
