// Package pathutil resolves user-supplied filesystem paths before they are
// stored or handed to the transfer engine.
package pathutil

import (
	"os"
	"path/filepath"
)

// ResolveAbsolutePath expands and absolutizes a user-supplied path.
//
// A leading ~ is expanded to the home directory. Symlinks and junctions are
// resolved in the existing portion of the path, then any not-yet-existing
// components are appended. That handles destinations like a junction-backed
// Downloads folder whose target subdirectory has not been created yet.
//
// Sync folder mappings are stored resolved so that the same directory added
// through different spellings always maps to one row.
func ResolveAbsolutePath(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = home + path[1:]
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	// Fast path: the whole path exists.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err == nil {
		return resolved, nil
	}

	// Walk up to the deepest existing ancestor, resolve links there, and
	// re-attach the missing components.
	current := absPath
	var remainder []string

	for {
		if _, err := os.Stat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				resolved = current
			}
			for i := len(remainder) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, remainder[i])
			}
			return resolved, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return absPath, nil
		}
		remainder = append(remainder, filepath.Base(current))
		current = parent
	}
}
