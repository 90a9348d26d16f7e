package session

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.accom.
func BaseDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".accom")
}

// Dir returns the session-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "sessions", name)
}

// LockPath returns the lock file path for a session.
func LockPath(name string) string {
	return filepath.Join(Dir(name), "LOCK")
}

// WorldDBPath returns the default relay-owned world.db path.
func WorldDBPath() string {
	return filepath.Join(BaseDir(), "world.db")
}

// LogDir returns the log directory for a session.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the session log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "accom.log")
}

// RelayLogPath returns the relay daemon log file path.
func RelayLogPath() string {
	return filepath.Join(BaseDir(), "logs", "accomd.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnsureDir creates the session directory tree with proper permissions.
func EnsureDir(name string) error {
	dirs := []string{
		Dir(name),
		LogDir(name),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
