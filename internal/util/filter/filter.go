// Package filter matches file names and relative paths against glob
// pattern lists. Sync folder rules and remote listings share it so a
// pattern behaves the same everywhere it can be typed.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/tauri-drive/engine/internal/localfs"
)

// Config holds the pattern lists applied to a candidate file.
type Config struct {
	// Include holds glob patterns matched against file names. Empty
	// means every name is eligible. Example: []string{"*.dat", "*.txt"}
	Include []string

	// Exclude holds glob patterns that reject a file even when an
	// include pattern matches it. Example: []string{"debug*", "temp*"}
	Exclude []string

	// PathInclude patterns match against the full relative path.
	// ** crosses directory boundaries: "**/results.dat" matches
	// "a/b/c/results.dat".
	PathInclude []string
}

// Empty reports whether the config filters nothing out.
func (c Config) Empty() bool {
	return len(c.Include) == 0 && len(c.Exclude) == 0 && len(c.PathInclude) == 0
}

// ApplyToEntries returns the walked entries that pass the config.
func ApplyToEntries(entries []localfs.FileEntry, config Config) []localfs.FileEntry {
	if config.Empty() {
		return entries
	}

	filtered := make([]localfs.FileEntry, 0, len(entries))
	for _, entry := range entries {
		if len(config.PathInclude) > 0 {
			path := entry.RelPath
			if path == "" {
				path = entry.Name
			}
			if !matchesAnyPath(path, config.PathInclude) {
				continue
			}
		}
		if MatchesName(entry.Name, config) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// MatchesName applies the include and exclude lists to a file name.
// Exclude wins over include; an empty include list admits every name.
func MatchesName(filename string, config Config) bool {
	for _, pattern := range config.Exclude {
		if nameMatches(pattern, filename) {
			return false
		}
	}

	if len(config.Include) == 0 {
		return true
	}
	for _, pattern := range config.Include {
		if nameMatches(pattern, filename) {
			return true
		}
	}
	return false
}

// nameMatches tries the pattern against the name as given and against
// its base, so "*.dat" works whether the caller passes a bare name or a
// slash path.
func nameMatches(pattern, name string) bool {
	if ok, _ := filepath.Match(pattern, name); ok {
		return true
	}
	ok, _ := filepath.Match(pattern, filepath.Base(name))
	return ok
}

func matchesAnyPath(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		if matchPath(path, filepath.ToSlash(pattern)) {
			return true
		}
	}
	return false
}

// matchPath matches a slash-separated path against one pattern,
// extending filepath.Match with ** for crossing directory boundaries:
//
//	"**/foo.txt"  matches "foo.txt", "a/foo.txt", "a/b/c/foo.txt"
//	"run_1/**"    matches everything under run_1/
//	"a/**/b.txt"  matches "a/b.txt", "a/x/b.txt", "a/x/y/b.txt"
func matchPath(path, pattern string) bool {
	if !strings.Contains(pattern, "**") {
		ok, _ := filepath.Match(pattern, path)
		return ok
	}

	segs := strings.Split(path, "/")

	switch {
	case pattern == "**":
		return true

	case strings.HasPrefix(pattern, "**/"):
		// Match the rest of the pattern at every depth.
		rest := pattern[3:]
		for i := range segs {
			if matchPath(strings.Join(segs[i:], "/"), rest) {
				return true
			}
		}
		return false

	case strings.HasSuffix(pattern, "/**"):
		// Everything at or under a directory whose path matches the head.
		head := pattern[:len(pattern)-3]
		if path == head || strings.HasPrefix(path, head+"/") {
			return true
		}
		for i := 1; i <= len(segs); i++ {
			if ok, _ := filepath.Match(head, strings.Join(segs[:i], "/")); ok {
				return true
			}
		}
		return false
	}

	if cut := strings.Index(pattern, "/**/"); cut != -1 {
		head, rest := pattern[:cut], pattern[cut+4:]
		for i := 1; i < len(segs); i++ {
			if ok, _ := filepath.Match(head, strings.Join(segs[:i], "/")); !ok {
				continue
			}
			for j := i; j <= len(segs); j++ {
				if matchPath(strings.Join(segs[j:], "/"), rest) {
					return true
				}
			}
		}
		return false
	}

	// Anything else ("a**b") degrades to a single-segment wildcard.
	ok, _ := filepath.Match(strings.ReplaceAll(pattern, "**", "*"), path)
	return ok
}

// ParsePatternList splits a comma-separated pattern string, trimming
// whitespace and dropping empty items: "*.dat, *.txt" parses to
// ["*.dat", "*.txt"].
func ParsePatternList(patternStr string) []string {
	if patternStr == "" {
		return nil
	}
	parts := strings.Split(patternStr, ",")
	patterns := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	return patterns
}
