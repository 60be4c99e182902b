// Package config resolves per-user filesystem locations for Tauri Drive.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/tauri-drive/engine/internal/constants"
)

// DataDirectory returns the per-user application data directory.
//
// Locations:
//   - Windows: %LOCALAPPDATA%\tauri-drive
//   - macOS: ~/Library/Application Support/tauri-drive
//   - Linux: $XDG_DATA_HOME/tauri-drive or ~/.local/share/tauri-drive
func DataDirectory() string {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), constants.AppDirName)
			}
			localAppData = filepath.Join(homeDir, "AppData", "Local")
		}
		return filepath.Join(localAppData, constants.AppDirName)

	case "darwin":
		configDir, err := os.UserConfigDir()
		if err != nil {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return filepath.Join(os.TempDir(), constants.AppDirName)
			}
			return filepath.Join(homeDir, "Library", "Application Support", constants.AppDirName)
		}
		return filepath.Join(configDir, constants.AppDirName)

	default:
		// Unix: XDG data directory
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, constants.AppDirName)
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), constants.AppDirName)
		}
		return filepath.Join(homeDir, ".local", "share", constants.AppDirName)
	}
}

// DatabasePath returns the SQLite database path under dir, or under
// DataDirectory when dir is empty.
func DatabasePath(dir string) string {
	if dir == "" {
		dir = DataDirectory()
	}
	return filepath.Join(dir, constants.DatabaseFileName)
}

// KeyFilePath returns the machine-local key file path under dir, or under
// DataDirectory when dir is empty.
func KeyFilePath(dir string) string {
	if dir == "" {
		dir = DataDirectory()
	}
	return filepath.Join(dir, constants.KeyFileName)
}

// EnsureDataDirectory creates dir (or DataDirectory when dir is empty)
// with 0700 permissions and returns the resolved path.
func EnsureDataDirectory(dir string) (string, error) {
	if dir == "" {
		dir = DataDirectory()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
