package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
)

func newProcessor(t *testing.T, docs ...index.Document) *Processor {
	t.Helper()
	idx, err := index.Build(docs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return New(idx)
}

func corpus(t *testing.T) *Processor {
	return newProcessor(t,
		index.Document{ID: "doc1", Text: "cat dog cat"},
		index.Document{ID: "doc2", Text: "dog bird"},
		index.Document{ID: "doc3", Text: "the cat sat far away from the lonely dog"},
		index.Document{ID: "doc4", Text: "birds and fish"},
	)
}

func TestTPScoreScenario(t *testing.T) {
	p := corpus(t)
	if got := p.TPScore("cat dog", "doc1"); got != 2 {
		t.Errorf("TPScore(cat dog, doc1) = %v, want 2", got)
	}
	if got := p.TPScore("cat", "doc1"); got != 1.0/17 {
		t.Errorf("single-term TPScore = %v, want 1/17", got)
	}
}

func TestQueryUsesDocumentTokenizer(t *testing.T) {
	p := corpus(t)
	// Punctuation and case are normalised exactly as at index time.
	if a, b := p.Relevance("Cat, DOG?", "doc1"), p.Relevance("cat dog", "doc1"); a != b {
		t.Errorf("Relevance differs after normalisation: %v vs %v", a, b)
	}
}

func TestRelevanceBlend(t *testing.T) {
	p := corpus(t)
	for _, doc := range []string{"doc1", "doc2", "doc3", "doc4"} {
		want := 0.6*p.TPScore("cat dog", doc) + 0.4*p.VSScore("cat dog", doc)
		if got := p.Relevance("cat dog", doc); math.Abs(got-want) > 1e-12 {
			t.Errorf("Relevance(%s) = %v, want %v", doc, got, want)
		}
	}
}

func TestVSScoreZeroNormIsZero(t *testing.T) {
	p := newProcessor(t,
		index.Document{ID: "a", Text: "same words"},
		index.Document{ID: "b", Text: "same words"},
	)
	// Every term occurs in every document, so every weight and norm is 0.
	if got := p.VSScore("same", "a"); got != 0 {
		t.Errorf("VSScore = %v, want 0", got)
	}
	if got := p.VSScore("zzz", "a"); got != 0 || math.IsNaN(got) {
		t.Errorf("VSScore(oov) = %v, want 0", got)
	}
}

func TestTopKDocs(t *testing.T) {
	p := corpus(t)
	got := p.TopKDocs("cat dog", 2)
	want := []string{"doc1", "doc3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopKDocs = %v, want %v", got, want)
	}
	if got := p.TopKDocs("cat dog", 10); len(got) != 4 {
		t.Errorf("k beyond corpus should clamp, got %v", got)
	}
	if got := p.TopKDocs("cat dog", 0); len(got) != 0 {
		t.Errorf("k=0 should be empty, got %v", got)
	}
}

func TestSearchResultsDescending(t *testing.T) {
	p := corpus(t)
	res, err := p.Search(context.Background(), "dog bird", 4)
	if err != nil {
		t.Fatal(err)
	}
	if res.Results[0].DocID != "doc2" {
		t.Errorf("top doc = %s, want doc2", res.Results[0].DocID)
	}
	for i := 1; i < len(res.Results); i++ {
		if res.Results[i].Score > res.Results[i-1].Score {
			t.Errorf("results not descending at %d: %+v", i, res.Results)
		}
	}
	if !reflect.DeepEqual(res.Terms, []string{"dog", "bird"}) {
		t.Errorf("Terms = %v", res.Terms)
	}
}

func TestSearchCancelled(t *testing.T) {
	p := corpus(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Search(ctx, "cat", 2); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestSearchBatchMatchesSequential(t *testing.T) {
	p := corpus(t)
	queries := make([]string, 20)
	for i := range queries {
		queries[i] = []string{"cat dog", "bird", "fish cat", "lonely dog"}[i%4]
	}
	results, err := p.SearchBatch(context.Background(), queries, 3, 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, q := range queries {
		if want := p.TopKDocs(q, 3); !reflect.DeepEqual(results[i].IDs(), want) {
			t.Errorf("query %d (%q): %v, want %v", i, q, results[i].IDs(), want)
		}
	}
}

func BenchmarkTopKDocs(b *testing.B) {
	docs := make([]index.Document, 1000)
	words := []string{"search", "rank", "graph", "index", "query", "page", "link", "term"}
	for i := range docs {
		docs[i] = index.Document{
			ID:   fmt.Sprintf("doc-%d", i),
			Text: fmt.Sprintf("%s %s %s %s", words[i%8], words[(i+3)%8], words[(i+5)%8], words[(i*7)%8]),
		}
	}
	idx, err := index.Build(docs)
	if err != nil {
		b.Fatal(err)
	}
	p := New(idx)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.TopKDocs("rank graph", 10)
	}
}

func TestExplain(t *testing.T) {
	p := corpus(t)
	got, err := p.Explain("cat dog", "doc3")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if got.Score != p.Relevance("cat dog", "doc3") || got.Proximity != p.TPScore("cat dog", "doc3") {
		t.Errorf("Explain = %+v disagrees with Relevance/TPScore", got)
	}
	if _, err := p.Explain("cat", "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("unknown doc err = %v, want ErrNotFound", err)
	}
}
