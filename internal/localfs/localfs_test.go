package localfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{".hidden", true},
		{".gitignore", true},
		{"visible.txt", false},
		{"normal", false},
		{"/path/to/.hidden", true},
		{"/path/to/visible.txt", false},
		{"../.hidden", true},
		{"../visible.txt", false},
		{"..", false},
		{".", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsHidden(tt.path); got != tt.expected {
				t.Errorf("IsHidden(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestIsHiddenName(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{".hidden", true},
		{".gitignore", true},
		{"visible.txt", false},
		{"..", false},
		{".", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHiddenName(tt.name); got != tt.expected {
				t.Errorf("IsHiddenName(%q) = %v, want %v", tt.name, got, tt.expected)
			}
		})
	}
}

// syncTestTree builds:
//
//	root/
//	  b.txt
//	  .hidden_file
//	  sub/
//	    nested/
//	      deep.txt
//	    a.txt
//	  .hidden_dir/
//	    inside.txt
func syncTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("b.txt", "b")
	write(".hidden_file", "h")
	write("sub/nested/deep.txt", "d")
	write("sub/a.txt", "a")
	write(".hidden_dir/inside.txt", "i")

	return root
}

func TestCollectFilesSkipsHidden(t *testing.T) {
	root := syncTestTree(t)

	files, err := CollectFiles(root, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"b.txt", "sub/a.txt", "sub/nested/deep.txt"}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %+v", len(files), len(want), files)
	}
	for i, f := range files {
		if f.RelPath != want[i] {
			t.Errorf("files[%d].RelPath = %q, want %q", i, f.RelPath, want[i])
		}
	}
}

func TestCollectFilesIncludeHidden(t *testing.T) {
	root := syncTestTree(t)

	files, err := CollectFiles(root, WalkOptions{IncludeHidden: true})
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 5 {
		t.Fatalf("got %d files, want 5", len(files))
	}

	hasHidden := false
	for _, f := range files {
		if IsHiddenName(f.Name) {
			hasHidden = true
		}
	}
	if !hasHidden {
		t.Error("expected hidden entries when IncludeHidden=true")
	}
}

func TestCollectFilesDeterministic(t *testing.T) {
	root := syncTestTree(t)

	first, err := CollectFiles(root, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := CollectFiles(root, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if len(first) != len(second) {
		t.Fatalf("walk lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RelPath != second[i].RelPath {
			t.Errorf("walk order differs at %d: %q vs %q", i, first[i].RelPath, second[i].RelPath)
		}
	}
}

func TestCollectFilesRelPathIsSlashed(t *testing.T) {
	root := syncTestTree(t)

	files, err := CollectFiles(root, WalkOptions{})
	if err != nil {
		t.Fatal(err)
	}

	for _, f := range files {
		for _, r := range f.RelPath {
			if r == '\\' {
				t.Errorf("RelPath %q contains backslash", f.RelPath)
			}
		}
		if filepath.IsAbs(f.RelPath) {
			t.Errorf("RelPath %q is absolute", f.RelPath)
		}
	}
}

func TestWalkVisitsDirectories(t *testing.T) {
	root := syncTestTree(t)

	var dirs []string
	err := Walk(root, WalkOptions{}, func(entry FileEntry) error {
		if entry.IsDir {
			dirs = append(dirs, entry.RelPath)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"sub", "sub/nested"}
	if len(dirs) != len(want) {
		t.Fatalf("got dirs %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dirs[%d] = %q, want %q", i, dirs[i], want[i])
		}
	}
}

func TestWalkSkipDir(t *testing.T) {
	root := syncTestTree(t)

	var seen []string
	err := Walk(root, WalkOptions{}, func(entry FileEntry) error {
		if entry.IsDir && entry.Name == "sub" {
			return filepath.SkipDir
		}
		seen = append(seen, entry.RelPath)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, rel := range seen {
		if rel != "b.txt" {
			t.Errorf("unexpected entry %q after skipping sub/", rel)
		}
	}
}

func TestCollectFilesMissingRoot(t *testing.T) {
	files, err := CollectFiles(filepath.Join(t.TempDir(), "nope"), WalkOptions{})
	if err == nil && len(files) != 0 {
		t.Errorf("expected error or empty result for missing root, got %d files", len(files))
	}
}
