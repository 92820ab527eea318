package site

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// IgnoreList excludes pages by file name or by relative source path.
type IgnoreList struct {
	Basenames map[string]struct{}
	RelPaths  map[string]struct{}
}

// Matches reports whether the normalised relative path rel is ignored.
func (l IgnoreList) Matches(rel string) (byBasename, byPath bool) {
	_, byBasename = l.Basenames[basename(rel)]
	_, byPath = l.RelPaths[rel]
	return byBasename, byPath
}

// LoadWordSet reads a line-oriented word list. Blank lines and lines
// starting with '#' are skipped; every other line is stored as written and
// lower-cased. An empty path yields an empty set. On error the returned set
// is empty and usable.
func LoadWordSet(p string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	err := eachLine(p, func(line string) {
		set[line] = struct{}{}
		set[strings.ToLower(line)] = struct{}{}
	})
	if err != nil {
		return map[string]struct{}{}, err
	}
	return set, nil
}

// LoadIgnoreList reads a line-oriented list of source paths to exclude.
// Each entry contributes its file name and its normalised path, both as
// written and lower-cased.
func LoadIgnoreList(p string) (IgnoreList, error) {
	l := IgnoreList{
		Basenames: make(map[string]struct{}),
		RelPaths:  make(map[string]struct{}),
	}
	err := eachLine(p, func(line string) {
		for _, v := range []string{line, strings.ToLower(line)} {
			norm := NormalizeRel(v)
			l.Basenames[basename(norm)] = struct{}{}
			l.RelPaths[norm] = struct{}{}
		}
	})
	if err != nil {
		return IgnoreList{Basenames: map[string]struct{}{}, RelPaths: map[string]struct{}{}}, err
	}
	return l, nil
}

// NormalizeRel converts backslashes to slashes and strips every leading
// '.' and '/' character.
func NormalizeRel(p string) string {
	return strings.TrimLeft(strings.ReplaceAll(p, `\`, "/"), "./")
}

// basename is the text after the last slash; a trailing slash yields "".
func basename(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func eachLine(p string, fn func(line string)) error {
	if p == "" {
		return nil
	}
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("opening list %s: %w", p, err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.ToValidUTF8(sc.Text(), ""))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fn(line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading list %s: %w", p, err)
	}
	return nil
}
