package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wangbin/jiebago"
)

// Segmenter splits a dense-script run into words.
type Segmenter interface {
	Segment(text string) []string
}

// CharSegmenter emits one token per code point, skipping whitespace.
type CharSegmenter struct{}

func (CharSegmenter) Segment(text string) []string {
	out := make([]string, 0, len(text)/3)
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, string(r))
	}
	return out
}

// JiebaSegmenter delegates to a jieba dictionary-based segmenter in
// accurate mode with HMM discovery of unknown words.
type JiebaSegmenter struct {
	seg jiebago.Segmenter
}

// NewJiebaSegmenter loads the jieba dictionary at dictPath.
func NewJiebaSegmenter(dictPath string) (*JiebaSegmenter, error) {
	if strings.TrimSpace(dictPath) == "" {
		return nil, fmt.Errorf("jieba dictionary path is empty")
	}
	s := &JiebaSegmenter{}
	if err := s.seg.LoadDictionary(dictPath); err != nil {
		return nil, fmt.Errorf("loading jieba dictionary %s: %w", dictPath, err)
	}
	return s, nil
}

func (s *JiebaSegmenter) Segment(text string) []string {
	out := make([]string, 0, len(text)/6+1)
	for word := range s.seg.Cut(text, true) {
		if strings.TrimSpace(word) == "" {
			continue
		}
		out = append(out, word)
	}
	return out
}

// Run is a maximal span of text whose code points are all dense-script or
// all not.
type Run struct {
	Text  string
	Dense bool
}

// IsDense reports whether r belongs to the CJK Unified Ideographs block.
func IsDense(r rune) bool {
	return r >= 0x4E00 && r <= 0x9FFF
}

// SplitRuns partitions text into alternating dense and non-dense runs.
func SplitRuns(text string) []Run {
	if text == "" {
		return nil
	}
	var runs []Run
	start := 0
	dense := false
	for i, r := range text {
		d := IsDense(r)
		if i == 0 {
			dense = d
			continue
		}
		if d != dense {
			runs = append(runs, Run{Text: text[start:i], Dense: dense})
			start = i
			dense = d
		}
	}
	return append(runs, Run{Text: text[start:], Dense: dense})
}
