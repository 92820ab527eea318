// Package tokenizer turns document text into normalised terms. Text is
// partitioned into dense-script runs (CJK ideographs) and everything else;
// dense runs go through a pluggable Segmenter while the rest is scanned for
// ASCII words, numbers and single symbols. Every raw token is then filtered
// by punctuation, length and stop-word rules.
package tokenizer

import (
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
)

// cjkPunctuation is rejected as punctuation even though some of these
// marks are not classified that way by a plain alphanumeric test.
var cjkPunctuation = map[string]struct{}{
	"，": {}, "。": {}, "！": {}, "？": {}, "；": {}, "：": {}, "、": {},
	"（": {}, "）": {}, "《": {}, "》": {}, "“": {}, "”": {}, "‘": {}, "’": {},
}

var asciiWord = regexp.MustCompile(`^[A-Za-z]+(?:'[A-Za-z]+)?$`)

// Config controls segmentation, casing and filtering.
type Config struct {
	// UseSegmenter enables delegation of dense-script runs to the
	// Segmenter passed to New. When false, or when no segmenter is given,
	// dense runs are split into single code points.
	UseSegmenter    bool
	KeepPunctuation bool
	LowercaseASCII  bool
	// MinTokenLen applies to every token, counted in code points.
	MinTokenLen int
	// MinASCIILen applies only to tokens shaped like ASCII words.
	MinASCIILen int
	// StemASCII reduces ASCII words to their English snowball stem.
	StemASCII bool
	StopWords map[string]struct{}
}

// DefaultConfig mirrors the defaults of the lexstats command.
func DefaultConfig() Config {
	return Config{
		UseSegmenter:   true,
		LowercaseASCII: true,
		MinTokenLen:    1,
		MinASCIILen:    2,
	}
}

// Tokenizer is immutable after construction and safe for concurrent use
// as long as its Segmenter is.
type Tokenizer struct {
	cfg Config
	seg Segmenter
}

// New builds a Tokenizer. A nil seg, or cfg.UseSegmenter == false, selects
// the character fallback.
func New(cfg Config, seg Segmenter) *Tokenizer {
	if seg == nil || !cfg.UseSegmenter {
		seg = CharSegmenter{}
	}
	if cfg.StopWords == nil {
		cfg.StopWords = map[string]struct{}{}
	}
	return &Tokenizer{cfg: cfg, seg: seg}
}

// Config returns the configuration the tokenizer was built with.
func (t *Tokenizer) Config() Config {
	return t.cfg
}

// Segmenter reports the segmenter in use for dense-script runs.
func (t *Tokenizer) Segmenter() Segmenter {
	return t.seg
}

// Terms yields the filtered terms of text in order. The sequence is a pure
// function of text and configuration and can be ranged over repeatedly.
func (t *Tokenizer) Terms(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for raw := range t.Raw(text) {
			term, ok := t.Normalize(raw)
			if !ok {
				continue
			}
			if !yield(term) {
				return
			}
		}
	}
}

// Tokenize returns all filtered terms of text.
func (t *Tokenizer) Tokenize(text string) []string {
	return slices.Collect(t.Terms(text))
}

// Raw yields unfiltered tokens. Whitespace is never produced.
func (t *Tokenizer) Raw(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, run := range SplitRuns(text) {
			if strings.TrimSpace(run.Text) == "" {
				continue
			}
			if run.Dense {
				for _, tok := range t.seg.Segment(run.Text) {
					if strings.TrimSpace(tok) == "" {
						continue
					}
					if !yield(tok) {
						return
					}
				}
				continue
			}
			if !scanOther(run.Text, yield) {
				return
			}
		}
	}
}

// Normalize applies the post-filter to a raw token and returns the term to
// count, or false when the token is rejected.
func (t *Tokenizer) Normalize(tok string) (string, bool) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return "", false
	}
	if !t.cfg.KeepPunctuation && isPunctuation(tok) {
		return "", false
	}
	if utf8.RuneCountInString(tok) < t.cfg.MinTokenLen {
		return "", false
	}
	if asciiWord.MatchString(tok) {
		if t.cfg.LowercaseASCII {
			tok = strings.ToLower(tok)
		}
		if t.cfg.StemASCII {
			tok = english.Stem(tok, false)
		}
		if len(tok) < t.cfg.MinASCIILen {
			return "", false
		}
	}
	if t.isStopWord(tok) {
		return "", false
	}
	return tok, true
}

func (t *Tokenizer) isStopWord(tok string) bool {
	if _, ok := t.cfg.StopWords[tok]; ok {
		return true
	}
	_, ok := t.cfg.StopWords[strings.ToLower(tok)]
	return ok
}

func isPunctuation(tok string) bool {
	if _, ok := cjkPunctuation[tok]; ok {
		return true
	}
	r, size := utf8.DecodeRuneInString(tok)
	if size != len(tok) {
		return false
	}
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

// scanOther extracts tokens from a non-dense run. Alternatives are tried in
// order: an ASCII word with at most one apostrophe group, an ASCII number
// with an optional fractional part, any other single non-space code point.
// It returns false if yield asked to stop.
func scanOther(s string, yield func(string) bool) bool {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		var end int
		switch {
		case unicode.IsSpace(r):
			i += size
			continue
		case isASCIILetter(s[i]):
			end = scanWord(s, i)
		case isASCIIDigit(s[i]):
			end = scanNumber(s, i)
		default:
			end = i + size
		}
		if !yield(s[i:end]) {
			return false
		}
		i = end
	}
	return true
}

func scanWord(s string, i int) int {
	end := skipWhile(s, i, isASCIILetter)
	if end+1 < len(s) && s[end] == '\'' && isASCIILetter(s[end+1]) {
		end = skipWhile(s, end+1, isASCIILetter)
	}
	return end
}

func scanNumber(s string, i int) int {
	end := skipWhile(s, i, isASCIIDigit)
	if end+1 < len(s) && s[end] == '.' && isASCIIDigit(s[end+1]) {
		end = skipWhile(s, end+1, isASCIIDigit)
	}
	return end
}

func skipWhile(s string, i int, pred func(byte) bool) int {
	for i < len(s) && pred(s[i]) {
		i++
	}
	return i
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isASCIIDigit(b byte) bool {
	return '0' <= b && b <= '9'
}
