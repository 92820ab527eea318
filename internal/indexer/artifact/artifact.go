// Package artifact defines the published lexeme statistics document and
// assembles it from a selection.
package artifact

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/selector"
)

const (
	Version = 3
	Mode    = "byWord-only-with-shannon-filter+shrink"
)

type Filters struct {
	MinTokenLen int     `json:"minTokenLen"`
	MinASCIILen int     `json:"minAsciiLen"`
	MinTotal    int     `json:"minTotal"`
	MinDF       int     `json:"minDf"`
	MaxDFRatio  float64 `json:"maxDfRatio"`
	MinEntropy  float64 `json:"minEntropy"`
	StemASCII   bool    `json:"stemAscii,omitempty"`
}

type Shrink struct {
	TopPagesPerWord int `json:"topPagesPerWord"`
	MaxWordsGlobal  int `json:"maxWordsGlobal"`
}

// Source is the configuration snapshot a build ran with.
type Source struct {
	Mode            string   `json:"mode"`
	IncludeExts     []string `json:"includeExts"`
	MaxWordsPerPage int      `json:"maxWordsPerPage"`
	TotalPages      int      `json:"totalPages"`
	Filters         Filters  `json:"filters"`
	Shrink          Shrink   `json:"shrink"`
}

// Artifact is the complete output of one build.
type Artifact struct {
	Version       int                 `json:"version"`
	Source        Source              `json:"source"`
	PageIndex     index.DocumentIndex `json:"pageIndex"`
	ByWord        ByWord              `json:"byWord"`
	SelectedWords []string            `json:"selectedWords"`
}

// Assemble packages a selection. It performs no computation beyond
// copying the selected records in selection order.
func Assemble(src Source, docs index.DocumentIndex, sel selector.Selection) *Artifact {
	if src.Mode == "" {
		src.Mode = Mode
	}
	if docs == nil {
		docs = index.DocumentIndex{}
	}
	words := make([]string, len(sel.Words))
	copy(words, sel.Words)
	byWord := ByWord{Words: words, Stats: make(map[string]selector.TermStats, len(words))}
	for _, w := range words {
		byWord.Stats[w] = sel.Stats[w]
	}
	return &Artifact{
		Version:       Version,
		Source:        src,
		PageIndex:     docs,
		ByWord:        byWord,
		SelectedWords: words,
	}
}

// JSON encodes the artifact compactly without HTML escaping.
func (a *Artifact) JSON() ([]byte, error) {
	return marshal(a)
}

// Digest is the hex BLAKE3-256 digest of the compact JSON encoding.
func (a *Artifact) Digest() (string, error) {
	data, err := a.JSON()
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ByWord is the term -> record mapping. It encodes as a JSON object whose
// keys follow Words.
type ByWord struct {
	Words []string
	Stats map[string]selector.TermStats
}

func (b ByWord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, w := range b.Words {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(w)
		if err != nil {
			return nil, err
		}
		value, err := marshal(b.Stats[w])
		if err != nil {
			return nil, fmt.Errorf("encoding stats for %q: %w", w, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (b *ByWord) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("byWord: expected object")
	}
	b.Words = nil
	b.Stats = make(map[string]selector.TermStats)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		w, _ := tok.(string)
		var st selector.TermStats
		if err := dec.Decode(&st); err != nil {
			return fmt.Errorf("byWord %q: %w", w, err)
		}
		if _, dup := b.Stats[w]; !dup {
			b.Words = append(b.Words, w)
		}
		b.Stats[w] = st
	}
	_, err = dec.Token()
	return err
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
