package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoteKeyFor(t *testing.T) {
	testCases := []struct {
		name      string
		localPath string
		remote    string
		want      string
	}{
		{"empty_remote_uses_base_name", "/home/user/report.pdf", "", "report.pdf"},
		{"explicit_key", "/home/user/report.pdf", "docs/2025.pdf", "docs/2025.pdf"},
		{"prefix_keeps_base_name", "/home/user/report.pdf", "docs/", "docs/report.pdf"},
		{"nested_prefix", "/tmp/a/b/data.bin", "backups/daily/", "backups/daily/data.bin"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := remoteKeyFor(tc.localPath, tc.remote)
			if got != tc.want {
				t.Errorf("remoteKeyFor(%q, %q) = %q, want %q", tc.localPath, tc.remote, got, tc.want)
			}
		})
	}
}

func TestDownloadTarget(t *testing.T) {
	t.Run("empty_local_uses_key_base", func(t *testing.T) {
		got, err := downloadTarget("photos/2024/img.jpg", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "img.jpg" {
			t.Errorf("got %q, want %q", got, "img.jpg")
		}
	})

	t.Run("existing_directory_gets_base_name", func(t *testing.T) {
		dir := t.TempDir()
		got, err := downloadTarget("docs/report.pdf", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := filepath.Join(dir, "report.pdf")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("explicit_file_path_kept", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "renamed.pdf")
		got, err := downloadTarget("docs/report.pdf", target)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != target {
			t.Errorf("got %q, want %q", got, target)
		}
	})

	t.Run("traversal_key_rejected", func(t *testing.T) {
		// A key whose final segment is ".." must not become a local name.
		if _, err := downloadTarget("photos/..", ""); err == nil {
			t.Error("expected error for traversal key, got none")
		}
	})

	t.Run("existing_file_not_treated_as_directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "existing.bin")
		if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := downloadTarget("docs/report.pdf", target)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != target {
			t.Errorf("got %q, want %q", got, target)
		}
	})
}

func TestRemoteKeyForEntry(t *testing.T) {
	testCases := []struct {
		name       string
		remotePath string
		relPath    string
		want       string
	}{
		{"simple_prefix", "docs", "report.pdf", "docs/report.pdf"},
		{"trailing_slash_trimmed", "docs/", "report.pdf", "docs/report.pdf"},
		{"empty_prefix_is_root", "", "report.pdf", "report.pdf"},
		{"nested_rel_path", "backup", "2024/q3/data.bin", "backup/2024/q3/data.bin"},
		{"slash_only_prefix", "/", "file.txt", "file.txt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := remoteKeyForEntry(tc.remotePath, tc.relPath)
			if got != tc.want {
				t.Errorf("remoteKeyForEntry(%q, %q) = %q, want %q", tc.remotePath, tc.relPath, got, tc.want)
			}
		})
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("short.txt", 30); got != "short.txt" {
		t.Errorf("short name should be unchanged, got %q", got)
	}

	long := "a-very-long-file-name-that-overflows-the-column.tar.gz"
	got := truncateName(long, 20)
	if len([]rune(got)) != 20 {
		t.Errorf("truncated name should be 20 runes, got %d (%q)", len([]rune(got)), got)
	}
	if got[len(got)-len("…"):] != "…" {
		t.Errorf("truncated name should end with ellipsis, got %q", got)
	}
}
