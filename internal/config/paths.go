package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// LogDirectory returns the directory for Orbit log files.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\Orbit\logs
//   - Unix: ~/.config/orbit/logs
func LogDirectory() string {
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), "orbit-logs")
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, "Orbit", "logs")
	}

	dir, err := ConfigDirectory()
	if err != nil {
		return filepath.Join(os.TempDir(), "orbit-logs")
	}
	return filepath.Join(dir, "logs")
}

// EnsureLogDirectory creates the log directory if it doesn't exist.
// Uses 0700 so logs are readable by the owner only.
func EnsureLogDirectory() error {
	return os.MkdirAll(LogDirectory(), 0700)
}

// DefaultLogFile returns the rotating log file used when log_file is "default".
func DefaultLogFile() string {
	return filepath.Join(LogDirectory(), "orbit.log")
}

// ResolveLogFile maps the log_file setting to a path. Empty disables file logging.
func ResolveLogFile(setting string) string {
	switch setting {
	case "":
		return ""
	case "default":
		return DefaultLogFile()
	default:
		return expandHome(setting)
	}
}
