package artifact

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/lexstats/internal/indexer/selector"
)

func sampleSelection() selector.Selection {
	return selector.Selection{
		Words: []string{"zebra", "<b>", "北京"},
		Stats: map[string]selector.TermStats{
			"zebra": {Total: 3, DF: 2, DFR: 1, H: 0.9182958340544896, Pages: index.PostingList{{DocID: "a1", Count: 2}, {DocID: "b2", Count: 1}}},
			"<b>":   {Total: 1, DF: 1, DFR: 0.5, H: 0, Pages: index.PostingList{{DocID: "a1", Count: 1}}},
			"北京":    {Total: 2, DF: 1, DFR: 0.5, H: 0, Pages: index.PostingList{{DocID: "b2", Count: 2}}},
			"unused": {Total: 9, DF: 1},
		},
	}
}

func sampleSource() Source {
	return Source{
		IncludeExts:     []string{".md"},
		MaxWordsPerPage: 1500,
		TotalPages:      2,
		Filters:         Filters{MinTokenLen: 1, MinASCIILen: 2, MinTotal: 1, MinDF: 1, MaxDFRatio: 1, MinEntropy: 0},
		Shrink:          Shrink{TopPagesPerWord: 10, MaxWordsGlobal: 3000},
	}
}

func TestAssembleJSON(t *testing.T) {
	docs := index.DocumentIndex{
		"a1": {Title: "Intro & Setup", Path: "/intro"},
		"b2": {Title: "北京", Path: "/beijing"},
	}
	a := Assemble(sampleSource(), docs, sampleSelection())
	data, err := a.JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	want := `{"version":3,"source":{"mode":"byWord-only-with-shannon-filter+shrink","includeExts":[".md"],` +
		`"maxWordsPerPage":1500,"totalPages":2,"filters":{"minTokenLen":1,"minAsciiLen":2,"minTotal":1,` +
		`"minDf":1,"maxDfRatio":1,"minEntropy":0},"shrink":{"topPagesPerWord":10,"maxWordsGlobal":3000}},` +
		`"pageIndex":{"a1":{"title":"Intro & Setup","path":"/intro"},"b2":{"title":"北京","path":"/beijing"}},` +
		`"byWord":{"zebra":{"t":3,"df":2,"dfr":1,"H":0.9182958340544896,"p":[{"h":"a1","c":2},{"h":"b2","c":1}]},` +
		`"<b>":{"t":1,"df":1,"dfr":0.5,"H":0,"p":[{"h":"a1","c":1}]},` +
		`"北京":{"t":2,"df":1,"dfr":0.5,"H":0,"p":[{"h":"b2","c":2}]}},` +
		`"selectedWords":["zebra","<b>","北京"]}`
	if string(data) != want {
		t.Errorf("JSON() mismatch:\ngot:  %s\nwant: %s", data, want)
	}
}

func TestAssembleOnlySelected(t *testing.T) {
	a := Assemble(sampleSource(), nil, sampleSelection())
	if _, ok := a.ByWord.Stats["unused"]; ok {
		t.Error("unselected term leaked into byWord")
	}
	if a.PageIndex == nil {
		t.Error("PageIndex must not be nil")
	}
	if a.Version != Version || a.Source.Mode != Mode {
		t.Errorf("Version = %d, Mode = %q", a.Version, a.Source.Mode)
	}
}

func TestRoundTripKeepsOrder(t *testing.T) {
	a := Assemble(sampleSource(), nil, sampleSelection())
	data, err := a.JSON()
	if err != nil {
		t.Fatal(err)
	}
	var back Artifact
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !slices.Equal(back.ByWord.Words, a.SelectedWords) {
		t.Errorf("byWord order = %v, want %v", back.ByWord.Words, a.SelectedWords)
	}
	if back.ByWord.Stats["zebra"].Total != 3 {
		t.Errorf("zebra = %+v", back.ByWord.Stats["zebra"])
	}
}

func TestDigest(t *testing.T) {
	a := Assemble(sampleSource(), nil, sampleSelection())
	d1, err := a.Digest()
	if err != nil {
		t.Fatal(err)
	}
	d2, _ := Assemble(sampleSource(), nil, sampleSelection()).Digest()
	if d1 != d2 || len(d1) != 64 {
		t.Errorf("digests %q and %q", d1, d2)
	}
	src := sampleSource()
	src.TotalPages = 3
	d3, _ := Assemble(src, nil, sampleSelection()).Digest()
	if d3 == d1 {
		t.Error("digest did not change with content")
	}
	if strings.ToLower(d1) != d1 {
		t.Errorf("digest not lower-case hex: %q", d1)
	}
}
