package github

import (
	"path/filepath"
	"strings"
)

// defaultIgnoreDirs are directory prefixes excluded from every snapshot.
var defaultIgnoreDirs = []string{
	"node_modules/",
	".git/",
	"dist/",
	"build/",
	"vendor/",
}

// defaultIgnoreFiles are exact file names excluded from every snapshot.
var defaultIgnoreFiles = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"bun.lockb",
}

// defaultIgnoreGlobs are base-name glob patterns excluded from every snapshot.
var defaultIgnoreGlobs = []string{
	"*.lock",
	"*.lockb",
	"*.log",
	"*.tmp",
}

// binaryExtensions are file extensions whose content is never useful as text.
var binaryExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".ico": {},
	".pdf": {}, ".zip": {}, ".gz": {}, ".tar": {}, ".jar": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {}, ".otf": {},
	".mp3": {}, ".mp4": {}, ".avi": {}, ".mov": {},
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".wasm": {},
}

// IgnoreFilter decides which snapshot paths are excluded from indexing.
// Decisions are made purely on the path, never the content.
type IgnoreFilter struct {
	dirs  []string
	files []string
	globs []string
}

// NewIgnoreFilter creates an IgnoreFilter with the default exclusion set.
func NewIgnoreFilter() IgnoreFilter {
	return IgnoreFilter{
		dirs:  defaultIgnoreDirs,
		files: defaultIgnoreFiles,
		globs: defaultIgnoreGlobs,
	}
}

// NewIgnoreFilterWithPatterns creates an IgnoreFilter with additional
// base-name glob patterns on top of the defaults.
func NewIgnoreFilterWithPatterns(patterns ...string) IgnoreFilter {
	f := NewIgnoreFilter()
	f.globs = append(append([]string{}, f.globs...), patterns...)
	return f
}

// ShouldIgnore reports whether the given repository-relative path is excluded.
func (f IgnoreFilter) ShouldIgnore(path string) bool {
	path = filepath.ToSlash(path)
	base := path
	if i := strings.LastIndex(path, "/"); i >= 0 {
		base = path[i+1:]
	}

	for _, dir := range f.dirs {
		if strings.HasPrefix(path, dir) || strings.Contains(path, "/"+dir) {
			return true
		}
	}

	for _, name := range f.files {
		if base == name {
			return true
		}
	}

	for _, pattern := range f.globs {
		if matched, err := filepath.Match(pattern, base); err == nil && matched {
			return true
		}
	}

	ext := strings.ToLower(filepath.Ext(base))
	if _, ok := binaryExtensions[ext]; ok {
		return true
	}

	return false
}
