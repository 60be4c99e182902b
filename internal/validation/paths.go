// Package validation rejects unsafe names before they touch the filesystem.
package validation

import (
	"fmt"
	"strings"
)

// ValidateFilename checks a bare file name taken from an untrusted source,
// typically the last segment of an object key, before it is joined into a
// local path. Separators, a literal "..", empty names and null bytes are
// rejected so a hostile key cannot climb out of the download directory.
// Interior dots stay legal: "report..v2.csv" is a valid name.
func ValidateFilename(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty file name")
	case name == "..":
		return fmt.Errorf("file name %q would escape the target directory", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("file name %q contains a path separator", name)
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("file name contains a null byte")
	}
	return nil
}
