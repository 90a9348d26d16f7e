package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("main")
	want := filepath.Join(home, ".accom", "sessions", "main")
	if got != want {
		t.Errorf("Dir(main) = %q, want %q", got, want)
	}
}

func TestLockPath(t *testing.T) {
	got := LockPath("test")
	if !strings.HasSuffix(got, filepath.Join("sessions", "test", "LOCK")) {
		t.Errorf("LockPath(test) = %q, want suffix sessions/test/LOCK", got)
	}
}

func TestWorldDBPath(t *testing.T) {
	got := WorldDBPath()
	if !strings.HasSuffix(got, filepath.Join(".accom", "world.db")) {
		t.Errorf("WorldDBPath() = %q, want suffix .accom/world.db", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("test")
	if !strings.HasSuffix(got, filepath.Join("test", "logs", "accom.log")) {
		t.Errorf("LogPath(test) = %q", got)
	}
}
