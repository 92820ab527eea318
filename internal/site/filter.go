package site

import (
	"os"
	"path/filepath"
	"strings"
)

// SkipReason explains why a page was not processed.
type SkipReason string

const (
	SkipNone            SkipReason = ""
	SkipMissingMetadata SkipReason = "missing_metadata"
	SkipExtension       SkipReason = "excluded_extension"
	SkipIgnoredBasename SkipReason = "ignored_basename"
	SkipIgnoredPath     SkipReason = "ignored_path"
	SkipMissingFile     SkipReason = "missing_file"
	SkipReadFailed      SkipReason = "read_failed"
)

// SkipReasons lists every reason in reporting order.
var SkipReasons = []SkipReason{
	SkipMissingMetadata,
	SkipExtension,
	SkipIgnoredBasename,
	SkipIgnoredPath,
	SkipMissingFile,
	SkipReadFailed,
}

// Filter decides page eligibility.
type Filter struct {
	// Root is the project directory source paths are relative to.
	Root string
	// IncludeExts are matched case-insensitively against the end of the
	// source path.
	IncludeExts []string
	Ignore      IgnoreList
}

// NewFilter lower-cases the extension list.
func NewFilter(root string, exts []string, ignore IgnoreList) Filter {
	lc := make([]string, 0, len(exts))
	for _, e := range exts {
		lc = append(lc, strings.ToLower(e))
	}
	return Filter{Root: root, IncludeExts: lc, Ignore: ignore}
}

// Check returns the absolute source path of an eligible page, or the reason
// it is skipped.
func (f Filter) Check(p Page) (string, SkipReason) {
	hash := strings.TrimSpace(p.Hash)
	mdPath := strings.TrimSpace(p.MDPath)
	if hash == "" || mdPath == "" {
		return "", SkipMissingMetadata
	}
	if !f.hasIncludedExt(mdPath) {
		return "", SkipExtension
	}
	byBasename, byPath := f.Ignore.Matches(NormalizeRel(mdPath))
	if byBasename {
		return "", SkipIgnoredBasename
	}
	if byPath {
		return "", SkipIgnoredPath
	}
	abs, err := filepath.Abs(filepath.Join(f.Root, filepath.FromSlash(mdPath)))
	if err != nil {
		return "", SkipMissingFile
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return abs, SkipMissingFile
	}
	return abs, SkipNone
}

func (f Filter) hasIncludedExt(p string) bool {
	lower := strings.ToLower(p)
	for _, ext := range f.IncludeExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
