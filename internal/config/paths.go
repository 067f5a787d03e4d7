package config

import (
	"os"
	"path/filepath"
)

// LogPath is where the daemon logs, shared with the service units.
const LogPath = "/tmp/lsq.log"

// CacheDir returns the directory holding the snapshot, status and config
// files. LSQ_CACHE_DIR overrides it, which the tests rely on.
func CacheDir() string {
	if dir := os.Getenv("LSQ_CACHE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cache", "lsq")
}

// SnapshotPath is the live snapshot database.
func SnapshotPath() string { return filepath.Join(CacheDir(), "sizes.db") }

// StatusPath is the daemon's one-word status file.
func StatusPath() string { return filepath.Join(CacheDir(), "status") }

// FilePath is the configuration file Load reads.
func FilePath() string { return filepath.Join(CacheDir(), "config") }
