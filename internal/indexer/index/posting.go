package index

// Posting is the number of occurrences of a term in one document. The JSON
// field names are the compact ones used in the published artifact.
type Posting struct {
	DocID string `json:"h"`
	Count int    `json:"c"`
}

// PostingList is ordered by the position at which each document first
// contributed to the term.
type PostingList []Posting

// Total is the sum of counts over the list.
func (pl PostingList) Total() int {
	total := 0
	for _, p := range pl {
		total += p.Count
	}
	return total
}

// PageRef is the display metadata of a processed document.
type PageRef struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// DocumentIndex maps a document id to its display metadata.
type DocumentIndex map[string]PageRef
