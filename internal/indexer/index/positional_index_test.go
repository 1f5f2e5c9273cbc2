package index

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
)

func writeDocs(t *testing.T, docs map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, text := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func catDogIndex(t *testing.T) *PositionalIndex {
	t.Helper()
	idx, err := NewFromFolder(writeDocs(t, map[string]string{
		"doc1": "cat dog cat",
		"doc2": "dog bird",
	}))
	if err != nil {
		t.Fatalf("NewFromFolder: %v", err)
	}
	return idx
}

func TestCatDogScenario(t *testing.T) {
	idx := catDogIndex(t)

	if got := idx.DocFrequency("cat"); got != 1 {
		t.Errorf("DocFrequency(cat) = %d, want 1", got)
	}
	if got := idx.DocFrequency("dog"); got != 2 {
		t.Errorf("DocFrequency(dog) = %d, want 2", got)
	}
	if got := idx.TermFrequency("cat", "doc1"); got != 2 {
		t.Errorf("TermFrequency(cat, doc1) = %d, want 2", got)
	}
	if got := idx.Weight("bird", "doc1"); got != 0 {
		t.Errorf("Weight(bird, doc1) = %v, want 0", got)
	}
	if got := idx.Positions("cat", "doc1"); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("Positions(cat, doc1) = %v", got)
	}
	wantW := math.Sqrt(2) * math.Log10(2)
	if got := idx.Weight("cat", "doc1"); math.Abs(got-wantW) > 1e-12 {
		t.Errorf("Weight(cat, doc1) = %v, want %v", got, wantW)
	}
	// dog occurs everywhere, so its idf is 0 and doc1's norm is cat's weight.
	if got := idx.L2Norm("doc1"); math.Abs(got-wantW) > 1e-12 {
		t.Errorf("L2Norm(doc1) = %v, want %v", got, wantW)
	}
	if got, want := idx.Terms("doc1"), []string{"cat", "dog"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Terms(doc1) = %v, want %v", got, want)
	}
}

func TestFrequencyInvariants(t *testing.T) {
	idx, err := Build([]Document{
		{ID: "a", Text: "the quick brown fox\njumps over the lazy dog"},
		{ID: "b", Text: "The dog, the fox; the END."},
		{ID: "c", Text: "nothing in common"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, term := range []string{"the", "fox", "dog", "end", "common", "missing"} {
		df := 0
		for i := 0; i < idx.DocNum(); i++ {
			doc, _ := idx.Doc(i)
			tf := idx.TermFrequency(term, doc)
			if tf != len(idx.Positions(term, doc)) {
				t.Errorf("tf(%s,%s)=%d but %d positions", term, doc, tf, len(idx.Positions(term, doc)))
			}
			if tf > 0 {
				df++
			} else if w := idx.Weight(term, doc); w != 0 {
				t.Errorf("Weight(%s,%s) = %v with tf=0", term, doc, w)
			}
		}
		if got := idx.DocFrequency(term); got != df {
			t.Errorf("DocFrequency(%s) = %d, want %d", term, got, df)
		}
	}
	// Positions continue across lines.
	if got := idx.Positions("the", "a"); !reflect.DeepEqual(got, []int{1, 7}) {
		t.Errorf("Positions(the, a) = %v, want [1 7]", got)
	}
}

func TestPostingListFormat(t *testing.T) {
	idx := catDogIndex(t)
	if got, want := idx.PostingList("dog"), "[<doc1: 2>, <doc2: 1>]"; got != want {
		t.Errorf("PostingList(dog) = %q, want %q", got, want)
	}
	if got, want := idx.PostingList("cat"), "[<doc1: 1, 3>]"; got != want {
		t.Errorf("PostingList(cat) = %q, want %q", got, want)
	}
	if got := idx.PostingList("zebra"); got != "[]" {
		t.Errorf("PostingList(zebra) = %q, want []", got)
	}
}

func TestPostingsAreCopies(t *testing.T) {
	idx := catDogIndex(t)
	pl := idx.Postings("cat")
	pl[0].Positions[0] = 99
	if got := idx.Positions("cat", "doc1"); got[0] != 1 {
		t.Errorf("index mutated through Postings copy: %v", got)
	}
}

func TestUnknownLookupsDegrade(t *testing.T) {
	idx := catDogIndex(t)
	if idx.TermFrequency("cat", "nope") != 0 || idx.DocFrequency("zebra") != 0 {
		t.Error("unknown lookups should be 0")
	}
	if idx.Weight("zebra", "doc1") != 0 || idx.L2Norm("nope") != 0 {
		t.Error("unknown weights should be 0")
	}
	if idx.Positions("zebra", "doc1") != nil || idx.Terms("nope") != nil {
		t.Error("unknown positions should be nil")
	}
	if _, ok := idx.Doc(5); ok {
		t.Error("Doc(5) should not exist")
	}
	if _, ok := idx.Doc(-1); ok {
		t.Error("Doc(-1) should not exist")
	}
}

func TestTextWeight(t *testing.T) {
	idx := catDogIndex(t)
	if got := idx.TextWeight("cat", "cat dog CAT"); got != 2 {
		t.Errorf("TextWeight = %v, want 2", got)
	}
	// A text equal to a document id is still treated as text.
	if got := idx.TextWeight("cat", "doc1"); got != 0 {
		t.Errorf("TextWeight(cat, doc1) = %v, want 0", got)
	}
}

func TestFolderOrderAndSubdirs(t *testing.T) {
	dir := writeDocs(t, map[string]string{"b.txt": "beta", "a.txt": "alpha"})
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	idx, err := NewFromFolder(dir)
	if err != nil {
		t.Fatal(err)
	}
	if idx.DocNum() != 2 {
		t.Fatalf("DocNum() = %d, want 2", idx.DocNum())
	}
	first, _ := idx.Doc(0)
	second, _ := idx.Doc(1)
	if first != "a.txt" || second != "b.txt" {
		t.Errorf("doc order = %s, %s", first, second)
	}
}

func TestMissingFolderIsFatal(t *testing.T) {
	_, err := NewFromFolder(filepath.Join(t.TempDir(), "absent"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestBuildRejectsDuplicateIDs(t *testing.T) {
	_, err := Build([]Document{{ID: "x", Text: "a"}, {ID: "x", Text: "b"}})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestEmptyDocumentHasZeroNorm(t *testing.T) {
	idx, err := Build([]Document{{ID: "empty", Text: ""}, {ID: "full", Text: "word"}})
	if err != nil {
		t.Fatal(err)
	}
	s, ok := idx.Stats("empty")
	if !ok || s.Length != 0 || s.L2Norm != 0 {
		t.Errorf("Stats(empty) = %+v, %v", s, ok)
	}
}
