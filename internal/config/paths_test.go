package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDatabasePath(t *testing.T) {
	got := DatabasePath("/tmp/custom")
	want := filepath.Join("/tmp/custom", "app.db")
	if got != want {
		t.Errorf("DatabasePath(/tmp/custom) = %q, want %q", got, want)
	}

	// Empty dir falls back to the per-user data directory
	if got := DatabasePath(""); filepath.Base(got) != "app.db" {
		t.Errorf("DatabasePath(\"\") = %q, want app.db basename", got)
	}
}

func TestKeyFilePath(t *testing.T) {
	got := KeyFilePath("/tmp/custom")
	want := filepath.Join("/tmp/custom", ".tauri-drive-key")
	if got != want {
		t.Errorf("KeyFilePath(/tmp/custom) = %q, want %q", got, want)
	}
}

func TestDataDirectoryEndsWithAppDir(t *testing.T) {
	dir := DataDirectory()
	if filepath.Base(dir) != "tauri-drive" {
		t.Errorf("DataDirectory() = %q, want tauri-drive basename", dir)
	}
}

func TestEnsureDataDirectory(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "nested", "data")

	resolved, err := EnsureDataDirectory(dir)
	if err != nil {
		t.Fatalf("EnsureDataDirectory failed: %v", err)
	}
	if resolved != dir {
		t.Errorf("resolved = %q, want %q", resolved, dir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat created dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected a directory")
	}
}
