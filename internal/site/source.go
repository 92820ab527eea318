package site

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Source reads the text of a page's source file.
type Source interface {
	Read(ctx context.Context, absPath string) (string, error)
}

// FileSource reads source files from disk. Bytes that are invalid in the
// configured encoding are dropped.
type FileSource struct {
	enc           encoding.Encoding
	stripMarkdown bool
}

// NewFileSource resolves the named text encoding. An empty name, "utf-8"
// and "utf8" select UTF-8.
func NewFileSource(encodingName string, stripMarkdown bool) (*FileSource, error) {
	s := &FileSource{stripMarkdown: stripMarkdown}
	if isUTF8(encodingName) {
		return s, nil
	}
	enc, err := ianaindex.IANA.Encoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encodingName, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", encodingName)
	}
	s.enc = enc
	return s, nil
}

func (s *FileSource) Read(ctx context.Context, absPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", absPath, err)
	}
	if s.enc != nil {
		data, err = s.enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decoding %s: %w", absPath, err)
		}
	}
	text := strings.ToValidUTF8(string(data), "")
	if s.stripMarkdown {
		text = PlainText([]byte(text))
	}
	return text, nil
}

func isUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}
