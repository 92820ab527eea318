package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/artifact"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/site"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexstats/pkg/errors"
)

const siteData = `{
  "title": "Docs <beta>",
  "navigation": [
    {"type": "dir", "title": "Guide", "children": [
      {"type": "page", "hash": "A", "mdPath": "docs/a.md", "title": "Cats", "path": "/a"},
      {"type": "page", "hash": "B", "mdPath": "docs/b.md", "title": "Birds", "path": "/b"},
      {"type": "page", "hash": "C", "mdPath": "docs/draft.md", "title": "Draft", "path": "/c"},
      {"type": "page", "hash": "D", "mdPath": "docs/missing.md", "title": "Gone", "path": "/d"}
    ]}
  ],
  "lexemeStats": {"version": 1}
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"public/vmdjson/site-data.json": siteData,
		"public/stopwords.txt":          "# stop words\nThe\n",
		"public/ignore_files.txt":       "./docs/draft.md\n",
		"docs/a.md":                     "The cat and the dog. The cat!",
		"docs/b.md":                     "The cat saw a bird 北京",
		"docs/draft.md":                 "secret draft words",
	}
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRunEndToEnd(t *testing.T) {
	root := writeProject(t)
	promPath := filepath.Join(t.TempDir(), "lexstats.prom")
	var stderr bytes.Buffer
	err := run(context.Background(), []string{
		"--project-root", root,
		"--workers", "2",
		"--metrics-textfile", promPath,
		"--log-level", "debug",
	}, &stderr)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, stderr.String())
	}

	doc, err := site.ReadHostDocument(filepath.Join(root, "public", "vmdjson", "site-data.json"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := doc.Keys(), []string{"title", "navigation", "lexemeStats"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	var title string
	if _, err := doc.Decode("title", &title); err != nil || title != "Docs <beta>" {
		t.Errorf("title = %q, %v", title, err)
	}

	var art artifact.Artifact
	if ok, err := doc.Decode("lexemeStats", &art); !ok || err != nil {
		t.Fatalf("Decode(lexemeStats) = %v, %v", ok, err)
	}
	if art.Version != artifact.Version || art.Source.TotalPages != 2 {
		t.Errorf("version %d totalPages %d", art.Version, art.Source.TotalPages)
	}
	if !slices.Equal(art.ByWord.Words, art.SelectedWords) {
		t.Errorf("byWord order %v != selectedWords %v", art.ByWord.Words, art.SelectedWords)
	}
	if art.SelectedWords[0] != "cat" {
		t.Errorf("highest entropy term = %q, want cat", art.SelectedWords[0])
	}
	for _, w := range []string{"the", "The", "secret", "!", "."} {
		if _, ok := art.ByWord.Stats[w]; ok {
			t.Errorf("unexpected term %q", w)
		}
	}
	for _, w := range []string{"北", "京", "bird", "dog"} {
		if _, ok := art.ByWord.Stats[w]; !ok {
			t.Errorf("missing term %q", w)
		}
	}
	if len(art.PageIndex) != 2 || art.PageIndex["A"].Title != "Cats" {
		t.Errorf("PageIndex = %+v", art.PageIndex)
	}

	prom, err := os.ReadFile(promPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`lexstats_pages_skipped_total{reason="ignored_basename"} 1`,
		`lexstats_pages_skipped_total{reason="missing_file"} 1`,
		`lexstats_pages_total{status="processed"} 2`,
	} {
		if !strings.Contains(string(prom), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
	if !strings.Contains(stderr.String(), "missing_md_file=docs/missing.md") {
		t.Errorf("expected missing file warning in log:\n%s", stderr.String())
	}
}

func TestRunIsRepeatable(t *testing.T) {
	root := writeProject(t)
	hostPath := filepath.Join(root, "public", "vmdjson", "site-data.json")
	var outputs [][]byte
	for range 2 {
		if err := run(context.Background(), []string{"--project-root", root}, &bytes.Buffer{}); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(hostPath)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, data)
	}
	if !bytes.Equal(outputs[0], outputs[1]) {
		t.Error("second run changed the host document")
	}
	if !json.Valid(outputs[0]) {
		t.Error("host document is not valid JSON")
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"unknown flag", []string{"--no-such-flag"}, apperrors.ExitUsage},
		{"extra argument", []string{"stray"}, apperrors.ExitUsage},
		{"negative threshold", []string{"--min-df", "-1"}, apperrors.ExitUsage},
		{"NaN ratio", []string{"--max-df-ratio", "NaN"}, apperrors.ExitUsage},
		{"infinite entropy", []string{"--min-entropy", "+Inf"}, apperrors.ExitUsage},
		{"unknown encoding", []string{"--encoding", "klingon"}, apperrors.ExitUsage},
		{"missing host document", []string{"--site-data-json", "nope.json"}, apperrors.ExitFailure},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := writeProject(t)
			args := append([]string{"--project-root", root}, tc.args...)
			err := run(context.Background(), args, &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.ExitCode(err); got != tc.wantCode {
				t.Errorf("ExitCode(%v) = %d, want %d", err, got, tc.wantCode)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stderr bytes.Buffer
	err := run(context.Background(), []string{"--help"}, &stderr)
	if !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("run(--help) = %v", err)
	}
	if !strings.Contains(stderr.String(), "--max-df-ratio") {
		t.Errorf("usage missing flags:\n%s", stderr.String())
	}
}

func TestMalformedHostDocument(t *testing.T) {
	root := writeProject(t)
	hostPath := filepath.Join(root, "public", "vmdjson", "site-data.json")
	if err := os.WriteFile(hostPath, []byte(`[1, 2]`), 0644); err != nil {
		t.Fatal(err)
	}
	err := run(context.Background(), []string{"--project-root", root}, &bytes.Buffer{})
	if !errors.Is(err, apperrors.ErrMalformedHostDocument) {
		t.Errorf("run() = %v, want ErrMalformedHostDocument", err)
	}
	data, _ := os.ReadFile(hostPath)
	if string(data) != `[1, 2]` {
		t.Error("malformed document was rewritten")
	}
}
