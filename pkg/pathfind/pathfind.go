// Package pathfind locates template files by searching an ordered list of
// directories and returning the first match.
package pathfind

import (
	"io/fs"
	"path"
	"regexp"
	"strings"
)

// SearchPath is one directory in a template search order. Override marks
// directories that belong to the site-level override family; legacy embedded
// lookups skip them.
type SearchPath struct {
	Dir      string
	Override bool
}

// Finder resolves a file name against an ordered list of search paths.
type Finder interface {
	Find(paths []SearchPath, name string) (string, bool)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.\-]`)

// Clean strips every character outside [A-Za-z0-9_.-] from name.
func Clean(name string) string {
	return unsafeName.ReplaceAllString(name, "")
}

// WithoutOverrides returns the subset of paths that are not part of the
// override family, preserving order.
func WithoutOverrides(paths []SearchPath) []SearchPath {
	out := make([]SearchPath, 0, len(paths))
	for _, p := range paths {
		if p.Override {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Dirs flattens search paths into their directory names.
func Dirs(paths []SearchPath) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.Dir)
	}
	return out
}

// FSFinder searches an fs.FS.
type FSFinder struct {
	fsys fs.FS
}

var _ Finder = (*FSFinder)(nil)

// NewFSFinder wraps fsys. A nil filesystem never finds anything.
func NewFSFinder(fsys fs.FS) *FSFinder {
	return &FSFinder{fsys: fsys}
}

// Find returns the first regular file named name inside paths.
func (f *FSFinder) Find(paths []SearchPath, name string) (string, bool) {
	if f == nil || f.fsys == nil {
		return "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for _, p := range paths {
		candidate := Join(p.Dir, name)
		if f.IsFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// IsFile reports whether name exists and is not a directory.
func (f *FSFinder) IsFile(name string) bool {
	if f == nil || f.fsys == nil {
		return false
	}
	info, err := fs.Stat(f.fsys, name)
	return err == nil && !info.IsDir()
}

// IsDir reports whether name exists and is a directory.
func (f *FSFinder) IsDir(name string) bool {
	if f == nil || f.fsys == nil {
		return false
	}
	info, err := fs.Stat(f.fsys, name)
	return err == nil && info.IsDir()
}

// Join builds an fs.FS-compatible path: slash separated, no leading slash.
func Join(elem ...string) string {
	joined := path.Join(elem...)
	joined = strings.TrimPrefix(joined, "/")
	if joined == "" {
		return "."
	}
	return joined
}
