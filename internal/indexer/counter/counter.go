// Package counter builds per-document term frequency tables.
package counter

import (
	"iter"
	"slices"
)

// TermCount is the number of occurrences of one term in one document.
type TermCount struct {
	Term  string
	Count int
}

// Counts lists the distinct terms of a document. Uncapped tables keep
// first-occurrence order; capped tables are ordered by count descending.
type Counts []TermCount

// Count tallies terms. When maxTerms > 0 and there are more distinct terms
// than that, only the maxTerms most frequent are kept, ties resolved in
// favour of the term seen first.
func Count(terms iter.Seq[string], maxTerms int) Counts {
	pos := make(map[string]int)
	var counts Counts
	for term := range terms {
		if i, ok := pos[term]; ok {
			counts[i].Count++
			continue
		}
		pos[term] = len(counts)
		counts = append(counts, TermCount{Term: term, Count: 1})
	}
	if maxTerms > 0 && len(counts) > maxTerms {
		slices.SortStableFunc(counts, func(a, b TermCount) int {
			return b.Count - a.Count
		})
		counts = slices.Clip(counts[:maxTerms])
	}
	return counts
}

// Total is the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, tc := range c {
		total += tc.Count
	}
	return total
}
