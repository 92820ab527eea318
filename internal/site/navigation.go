// Package site adapts a static site's data files to the indexer: it walks
// the navigation tree for page records, decides which pages are eligible,
// reads their source text, loads stop-word and ignore lists, and rewrites
// the host site-data document.
package site

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Page is a navigation leaf describing one document.
type Page struct {
	Hash   string
	MDPath string
	Title  string
	Path   string
}

// CollectPages walks nav depth-first and returns every node whose type is
// "page". nav is a decoded JSON value: a list of nodes or a single node.
// Page nodes are not descended into; nodes that are not objects are
// ignored.
func CollectPages(nav any) []Page {
	var pages []Page
	var walk func(node any)
	walk = func(node any) {
		m, ok := node.(map[string]any)
		if !ok {
			return
		}
		if t, _ := m["type"].(string); t == "page" {
			pages = append(pages, Page{
				Hash:   stringField(m, "hash"),
				MDPath: stringField(m, "mdPath"),
				Title:  stringField(m, "title"),
				Path:   stringField(m, "path"),
			})
			return
		}
		if children, ok := m["children"].([]any); ok {
			for _, child := range children {
				walk(child)
			}
		}
	}
	switch v := nav.(type) {
	case []any:
		for _, node := range v {
			walk(node)
		}
	case map[string]any:
		walk(v)
	}
	return pages
}

// stringField returns m[key] as trimmed text. Numeric ids are formatted;
// anything else that is not a string is treated as missing.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
