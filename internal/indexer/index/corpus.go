package index

import (
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/counter"
)

type termEntry struct {
	postings PostingList
	pos      map[string]int
}

// Corpus accumulates term -> document -> count for one build. It has a
// single owner and is not safe for concurrent use; the engine merges
// per-document results into it from one goroutine.
type Corpus struct {
	terms map[string]*termEntry
	order []string
	docs  map[string]struct{}
}

func NewCorpus() *Corpus {
	return &Corpus{
		terms: make(map[string]*termEntry),
		docs:  make(map[string]struct{}),
	}
}

// Add records the term counts of one document. Each count is stored, not
// summed: a document id added again overwrites the counts of the terms it
// lists and leaves its other terms as they were.
func (c *Corpus) Add(docID string, counts counter.Counts) {
	c.docs[docID] = struct{}{}
	for _, tc := range counts {
		if tc.Count <= 0 {
			continue
		}
		e, ok := c.terms[tc.Term]
		if !ok {
			e = &termEntry{pos: make(map[string]int)}
			c.terms[tc.Term] = e
			c.order = append(c.order, tc.Term)
		}
		if i, ok := e.pos[docID]; ok {
			e.postings[i].Count = tc.Count
			continue
		}
		e.pos[docID] = len(e.postings)
		e.postings = append(e.postings, Posting{DocID: docID, Count: tc.Count})
	}
}

// Terms returns every term in the order it was first added.
func (c *Corpus) Terms() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Postings returns a copy of the postings of term, or nil.
func (c *Corpus) Postings(term string) PostingList {
	e, ok := c.terms[term]
	if !ok {
		return nil
	}
	out := make(PostingList, len(e.postings))
	copy(out, e.postings)
	return out
}

// Len is the number of distinct terms.
func (c *Corpus) Len() int {
	return len(c.terms)
}

// DocCount is the number of distinct document ids added.
func (c *Corpus) DocCount() int {
	return len(c.docs)
}
