// Package archive walks pages stored in zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is called for every accepted file in the archive. Returning error
// stops the walk.
type WalkFunc func(f *zip.File) error

// Walk visits regular files of archive in stored order for which accept
// returns true. Archive containing absolute names or ".." components is
// rejected as a whole before any file is visited.
func Walk(archive string, accept func(name string) bool, fn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("unable to open archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() || (accept != nil && !accept(f.Name)) {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func isSafePath(name string) bool {
	if name == "" || path.IsAbs(name) || strings.HasPrefix(name, `\`) || strings.Contains(name, ":") {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
