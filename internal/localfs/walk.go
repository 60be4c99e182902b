package localfs

import (
	"io/fs"
	"path/filepath"
	"time"
)

// FileEntry describes one file or directory found during a walk.
type FileEntry struct {
	Path    string    // absolute or root-relative path as walked
	RelPath string    // path relative to the walk root, slash-separated
	Name    string    // base name
	Size    int64     // size in bytes as reported by stat
	IsDir   bool
	ModTime time.Time
}

// WalkOptions configures the behavior of Walk and CollectFiles.
type WalkOptions struct {
	// IncludeHidden includes dot-prefixed files and directories.
	// Default is false (hidden items excluded).
	IncludeHidden bool
}

// WalkFunc is the callback signature for Walk.
// Return filepath.SkipDir to skip a directory, or any other error to stop.
type WalkFunc func(entry FileEntry) error

// Walk traverses the tree under root depth-first, calling fn for every file
// and directory. Entries within each directory are visited in lexical order,
// so two walks over the same tree see the same sequence.
//
// Unless opts.IncludeHidden is set, hidden files are skipped and hidden
// directories are not descended into. Unreadable entries are skipped.
func Walk(root string, opts WalkOptions, fn WalkFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}

		name := d.Name()
		if !opts.IncludeHidden && IsHiddenName(name) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}

		return fn(FileEntry{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Name:    name,
			Size:    info.Size(),
			IsDir:   d.IsDir(),
			ModTime: info.ModTime(),
		})
	})
}

// CollectFiles walks the tree under root and returns its regular files in
// walk order. RelPath on each entry is slash-separated regardless of
// platform, ready to be joined onto a remote prefix.
func CollectFiles(root string, opts WalkOptions) ([]FileEntry, error) {
	var files []FileEntry
	err := Walk(root, opts, func(entry FileEntry) error {
		if entry.IsDir {
			return nil
		}
		files = append(files, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
