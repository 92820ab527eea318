// Package selector reduces corpus term statistics to the terms worth
// publishing. Terms are filtered by total count, document frequency,
// document-frequency ratio and Shannon entropy of their distribution across
// documents, then ranked by entropy and truncated.
package selector

import (
	"cmp"
	"math"
	"slices"

	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/index"
)

// Params are the inclusion thresholds and shrink limits. Zero limits mean
// unlimited.
type Params struct {
	MinTotal        int
	MinDF           int
	MaxDFRatio      float64
	MinEntropy      float64
	TopPagesPerWord int
	MaxWordsGlobal  int
}

// TermStats is the published record of one selected term.
type TermStats struct {
	Total int               `json:"t"`
	DF    int               `json:"df"`
	DFR   float64           `json:"dfr"`
	H     float64           `json:"H"`
	Pages index.PostingList `json:"p"`
}

// Selection holds the selected terms, highest entropy first, and their
// records. Words is the authoritative enumeration order.
type Selection struct {
	Words []string
	Stats map[string]TermStats
	// Candidates is the number of terms that passed every threshold
	// before the global cap was applied.
	Candidates int
}

// Entropy is the Shannon entropy in bits of the distribution counts/total.
// Non-positive counts contribute nothing.
func Entropy(counts []int, total int) float64 {
	if total <= 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c <= 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

// Select evaluates every term of c. totalDocs is the number of processed
// documents and is floored at 1.
func Select(c *index.Corpus, totalDocs int, p Params) Selection {
	totalDocs = max(1, totalDocs)
	stats := make(map[string]TermStats)
	var words []string

	for _, term := range c.Terms() {
		postings := c.Postings(term)
		st, ok := evaluate(postings, totalDocs, p)
		if !ok {
			continue
		}
		stats[term] = st
		words = append(words, term)
	}
	candidates := len(words)

	slices.SortStableFunc(words, func(a, b string) int {
		return cmp.Compare(stats[b].H, stats[a].H)
	})
	if p.MaxWordsGlobal > 0 && len(words) > p.MaxWordsGlobal {
		for _, w := range words[p.MaxWordsGlobal:] {
			delete(stats, w)
		}
		words = slices.Clip(words[:p.MaxWordsGlobal])
	}
	if words == nil {
		words = []string{}
	}
	return Selection{Words: words, Stats: stats, Candidates: candidates}
}

func evaluate(postings index.PostingList, totalDocs int, p Params) (TermStats, bool) {
	total := postings.Total()
	if total <= 0 {
		return TermStats{}, false
	}
	df := len(postings)
	if total < p.MinTotal || df < p.MinDF {
		return TermStats{}, false
	}
	dfr := float64(df) / float64(totalDocs)
	if dfr > p.MaxDFRatio {
		return TermStats{}, false
	}

	counts := make([]int, len(postings))
	for i, posting := range postings {
		counts[i] = posting.Count
	}
	h := Entropy(counts, total)
	if h < p.MinEntropy {
		return TermStats{}, false
	}

	slices.SortStableFunc(postings, func(a, b index.Posting) int {
		return b.Count - a.Count
	})
	if p.TopPagesPerWord > 0 && len(postings) > p.TopPagesPerWord {
		postings = slices.Clip(postings[:p.TopPagesPerWord])
	}
	return TermStats{Total: total, DF: df, DFR: dfr, H: h, Pages: postings}, true
}
