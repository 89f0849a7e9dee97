// Package storage persists saved positions, GUI preferences and referee
// verdict statistics in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chessreferee"

// DatabaseEnv overrides the database directory for every binary.
const DatabaseEnv = "REFEREE_DB"

// GetDataDir returns the per-user data directory, creating it if needed:
// ~/Library/Application Support/chessreferee on macOS, %APPDATA%\chessreferee
// on Windows and $XDG_DATA_HOME/chessreferee (default ~/.local/share) elsewhere.
func GetDataDir() (string, error) {
	base, err := userDataBase(runtime.GOOS)
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(base, appName))
}

// userDataBase resolves the platform's data root. The env var, when set, wins
// over the home-relative fallback.
func userDataBase(goos string) (string, error) {
	var env string
	var fallback []string
	switch goos {
	case "darwin":
		fallback = []string{"Library", "Application Support"}
	case "windows":
		env, fallback = "APPDATA", []string{"AppData", "Roaming"}
	default:
		env, fallback = "XDG_DATA_HOME", []string{".local", "share"}
	}

	if env != "" {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// GetDatabaseDir returns the BadgerDB directory: $REFEREE_DB if set, else
// "db" under GetDataDir.
func GetDatabaseDir() (string, error) {
	if dir := os.Getenv(DatabaseEnv); dir != "" {
		return ensureDir(dir)
	}
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(dataDir, "db"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
