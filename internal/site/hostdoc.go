package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexstats/pkg/errors"
)

// HostDocument is a JSON object whose members are kept as raw values in
// their original order so that rewriting it only touches the members set
// through Set.
type HostDocument struct {
	keys   []string
	values map[string]json.RawMessage
}

// ParseHostDocument decodes data, which must be a JSON object.
func ParseHostDocument(data []byte) (*HostDocument, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedHostDocument, "decoding: %v", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, apperrors.New(apperrors.ErrMalformedHostDocument, "root must be a JSON object")
	}
	doc := &HostDocument{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrMalformedHostDocument, "decoding key: %v", err)
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, apperrors.Newf(apperrors.ErrMalformedHostDocument, "decoding %q: %v", key, err)
		}
		if _, dup := doc.values[key]; !dup {
			doc.keys = append(doc.keys, key)
		}
		doc.values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedHostDocument, "decoding: %v", err)
	}
	if len(bytes.TrimSpace(data[dec.InputOffset():])) > 0 {
		return nil, apperrors.New(apperrors.ErrMalformedHostDocument, "trailing data after root object")
	}
	return doc, nil
}

// ReadHostDocument reads and parses the document at path. Any failure is
// fatal for a build.
func ReadHostDocument(path string) (*HostDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedHostDocument, "reading %s: %v", path, err)
	}
	doc, err := ParseHostDocument(data)
	if err != nil {
		return nil, fmt.Errorf("host document %s: %w", path, err)
	}
	return doc, nil
}

// Keys returns the member names in document order.
func (d *HostDocument) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Decode unmarshals member key into v. A missing member leaves v untouched
// and reports false.
func (d *HostDocument) Decode(key string, v any) (bool, error) {
	raw, ok := d.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decoding %q: %w", key, err)
	}
	return true, nil
}

// Navigation returns the decoded "navigation" member, or nil.
func (d *HostDocument) Navigation() (any, error) {
	var nav any
	if _, err := d.Decode("navigation", &nav); err != nil {
		return nil, apperrors.Newf(apperrors.ErrMalformedHostDocument, "%v", err)
	}
	return nav, nil
}

// Set replaces member key, or appends it when absent, with the encoding of
// v. v may be a json.Marshaler or raw JSON bytes wrapped in
// json.RawMessage.
func (d *HostDocument) Set(key string, v any) error {
	raw, ok := v.(json.RawMessage)
	if !ok {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding %q: %w", key, err)
		}
		raw = bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
	return nil
}

// Bytes renders the document with two-space indentation and a trailing
// newline. Non-ASCII text is written as is.
func (d *HostDocument) Bytes() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			compact.WriteByte(',')
		}
		var kb bytes.Buffer
		enc := json.NewEncoder(&kb)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(key); err != nil {
			return nil, err
		}
		compact.Write(bytes.TrimSuffix(kb.Bytes(), []byte("\n")))
		compact.WriteByte(':')
		compact.Write(d.values[key])
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indenting host document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// WriteHostDocument writes d to path through a temporary file in the same
// directory followed by a rename, so readers never see a partial file.
func WriteHostDocument(path string, d *HostDocument) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating host document directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp host document: %w", err)
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing host document: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing host document: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing host document: %w", err)
	}
	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpPath, info.Mode().Perm())
	} else {
		_ = os.Chmod(tmpPath, 0644)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming host document: %w", err)
	}
	return nil
}
