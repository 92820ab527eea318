package index

import (
	"slices"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/counter"
)

func TestCorpusAdd(t *testing.T) {
	c := NewCorpus()
	c.Add("A", counter.Counts{{Term: "cat", Count: 2}, {Term: "dog", Count: 1}})
	c.Add("B", counter.Counts{{Term: "cat", Count: 1}, {Term: "bird", Count: 1}})

	if got, want := c.Terms(), []string{"cat", "dog", "bird"}; !slices.Equal(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
	want := PostingList{{DocID: "A", Count: 2}, {DocID: "B", Count: 1}}
	if got := c.Postings("cat"); !slices.Equal(got, want) {
		t.Errorf("Postings(cat) = %v, want %v", got, want)
	}
	if got := c.Postings("emu"); got != nil {
		t.Errorf("Postings(emu) = %v, want nil", got)
	}
	if c.Len() != 3 || c.DocCount() != 2 {
		t.Errorf("Len() = %d, DocCount() = %d, want 3, 2", c.Len(), c.DocCount())
	}
}

func TestCorpusAddOverwritesDocument(t *testing.T) {
	c := NewCorpus()
	c.Add("A", counter.Counts{{Term: "cat", Count: 2}, {Term: "dog", Count: 1}})
	c.Add("B", counter.Counts{{Term: "cat", Count: 5}, {Term: "dog", Count: 4}})
	c.Add("A", counter.Counts{{Term: "cat", Count: 7}, {Term: "emu", Count: 1}})

	cat := c.Postings("cat")
	if want := (PostingList{{DocID: "A", Count: 7}, {DocID: "B", Count: 5}}); !slices.Equal(cat, want) {
		t.Errorf("Postings(cat) = %v, want %v", cat, want)
	}
	if want := (PostingList{{DocID: "A", Count: 1}, {DocID: "B", Count: 4}}); !slices.Equal(c.Postings("dog"), want) {
		t.Errorf("Postings(dog) = %v, want %v", c.Postings("dog"), want)
	}
	if got, want := c.Terms(), []string{"cat", "dog", "emu"}; !slices.Equal(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
	if c.DocCount() != 2 {
		t.Errorf("DocCount() = %d, want 2", c.DocCount())
	}
}

func TestCorpusReAddKeepsUnlistedTerms(t *testing.T) {
	c := NewCorpus()
	c.Add("A", counter.Counts{{Term: "x", Count: 1}, {Term: "y", Count: 1}})
	c.Add("A", counter.Counts{{Term: "x", Count: 2}})

	if got, want := c.Terms(), []string{"x", "y"}; !slices.Equal(got, want) {
		t.Errorf("Terms() = %v, want %v", got, want)
	}
	if want := (PostingList{{DocID: "A", Count: 2}}); !slices.Equal(c.Postings("x"), want) {
		t.Errorf("Postings(x) = %v, want %v", c.Postings("x"), want)
	}
	if want := (PostingList{{DocID: "A", Count: 1}}); !slices.Equal(c.Postings("y"), want) {
		t.Errorf("Postings(y) = %v, want %v", c.Postings("y"), want)
	}
}

func TestPostingsAreCopies(t *testing.T) {
	c := NewCorpus()
	c.Add("A", counter.Counts{{Term: "cat", Count: 1}})
	pl := c.Postings("cat")
	pl[0].Count = 99
	if got := c.Postings("cat")[0].Count; got != 1 {
		t.Errorf("corpus mutated through returned postings: %d", got)
	}
	if pl.Total() != 99 {
		t.Errorf("Total() = %d, want 99", pl.Total())
	}
}
