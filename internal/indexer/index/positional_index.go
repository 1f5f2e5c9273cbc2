// Package index implements the positional inverted index: term -> document ->
// positions, with per-document L2 norms for cosine scoring. An index is built
// once and is read-only afterwards; concurrent readers need no locking.
package index

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/floats"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
)

const maxLineSize = 16 << 20

type PositionalIndex struct {
	// postings maps a term to its postings keyed by document index, so scans
	// come out in document order.
	postings map[string]*btree.Map[int, *Posting]
	docs     []DocStats
	docIndex map[string]int
}

// NewFromFolder indexes every regular file in dir. A file's base name is its
// document id; files are indexed in name order and sub-directories are
// skipped.
func NewFromFolder(dir string) (*PositionalIndex, error) {
	start := time.Now()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading document folder %s: %w", dir, err)
	}
	b := newBuilder()
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := b.addFile(entry.Name(), path); err != nil {
			return nil, err
		}
	}
	idx := b.finish()
	idx.logBuilt(dir, start)
	return idx, nil
}

// Build indexes in-memory documents in the given order. Document ids must be
// unique.
func Build(docs []Document) (*PositionalIndex, error) {
	start := time.Now()
	b := newBuilder()
	for _, d := range docs {
		if err := b.add(d.ID, strings.NewReader(d.Text)); err != nil {
			return nil, err
		}
	}
	idx := b.finish()
	idx.logBuilt("memory", start)
	return idx, nil
}

func (idx *PositionalIndex) logBuilt(source string, start time.Time) {
	slog.Default().With("component", "positional-index").Info("index built",
		"source", source,
		"docs", len(idx.docs),
		"terms", len(idx.postings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

type builder struct {
	idx *PositionalIndex
}

func newBuilder() *builder {
	return &builder{idx: &PositionalIndex{
		postings: make(map[string]*btree.Map[int, *Posting]),
		docIndex: make(map[string]int),
	}}
}

func (b *builder) addFile(docID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening document %s: %w", path, err)
	}
	defer f.Close()
	if err := b.add(docID, f); err != nil {
		return fmt.Errorf("indexing document %s: %w", path, err)
	}
	return nil
}

// add scans r line by line. The position counter runs across the whole
// document.
func (b *builder) add(docID string, r io.Reader) error {
	if _, dup := b.idx.docIndex[docID]; dup {
		return fmt.Errorf("%w: duplicate document id %q", apperrors.ErrInvalidInput, docID)
	}
	docNum := len(b.idx.docs)
	stats := DocStats{DocID: docID}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	position := 0
	for sc.Scan() {
		for _, term := range tokenizer.Terms(sc.Text()) {
			position++
			docs, ok := b.idx.postings[term]
			if !ok {
				docs = new(btree.Map[int, *Posting])
				b.idx.postings[term] = docs
			}
			p, ok := docs.Get(docNum)
			if !ok {
				p = &Posting{DocID: docID, Positions: make([]int, 0, 4)}
				docs.Set(docNum, p)
				stats.Terms = append(stats.Terms, term)
			}
			p.add(position)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scanning %s: %w", docID, err)
	}
	stats.Length = position

	b.idx.docIndex[docID] = docNum
	b.idx.docs = append(b.idx.docs, stats)
	slog.Default().Debug("document indexed",
		"component", "positional-index",
		"doc_id", docID,
		"token_count", position,
		"distinct_terms", len(stats.Terms),
	)
	return nil
}

// finish caches every document's L2 norm. Weights depend on document
// frequencies, so this runs after all documents are added.
func (b *builder) finish() *PositionalIndex {
	idx := b.idx
	for i := range idx.docs {
		d := &idx.docs[i]
		weights := make([]float64, len(d.Terms))
		for j, term := range d.Terms {
			weights[j] = idx.Weight(term, d.DocID)
		}
		d.L2Norm = floats.Norm(weights, 2)
	}
	return idx
}

func (idx *PositionalIndex) posting(term, docID string) *Posting {
	docNum, ok := idx.docIndex[docID]
	if !ok {
		return nil
	}
	docs, ok := idx.postings[term]
	if !ok {
		return nil
	}
	p, _ := docs.Get(docNum)
	return p
}

// TermFrequency is the number of occurrences of term in docID, or 0.
func (idx *PositionalIndex) TermFrequency(term, docID string) int {
	if p := idx.posting(term, docID); p != nil {
		return p.Frequency
	}
	return 0
}

// DocFrequency is the number of documents containing term, or 0.
func (idx *PositionalIndex) DocFrequency(term string) int {
	if docs, ok := idx.postings[term]; ok {
		return docs.Len()
	}
	return 0
}

// Positions returns the positions of term in docID, nil when absent. The
// slice is shared with the index and must not be modified.
func (idx *PositionalIndex) Positions(term, docID string) []int {
	if p := idx.posting(term, docID); p != nil {
		return p.Positions
	}
	return nil
}

// Postings copies the posting list of term in document order.
func (idx *PositionalIndex) Postings(term string) PostingList {
	docs, ok := idx.postings[term]
	if !ok {
		return PostingList{}
	}
	result := make(PostingList, 0, docs.Len())
	docs.Scan(func(_ int, p *Posting) bool {
		result = append(result, Posting{
			DocID:     p.DocID,
			Frequency: p.Frequency,
			Positions: append([]int(nil), p.Positions...),
		})
		return true
	})
	return result
}

// PostingList renders the postings of term for inspection, "[]" when the
// term is unknown.
func (idx *PositionalIndex) PostingList(term string) string {
	return idx.Postings(term).String()
}

// Weight is sqrt(tf) * log10(N/df) for an indexed document, 0 when the term
// does not occur in it or the document is unknown.
func (idx *PositionalIndex) Weight(term, docID string) float64 {
	tf := idx.TermFrequency(term, docID)
	if tf == 0 {
		return 0
	}
	idf := math.Log10(float64(len(idx.docs)) / float64(idx.DocFrequency(term)))
	return math.Sqrt(float64(tf)) * idf
}

// TextWeight weighs term against ad-hoc text such as a query: the raw count
// of its occurrences after tokenisation.
func (idx *PositionalIndex) TextWeight(term, text string) float64 {
	return float64(tokenizer.Count(term, text))
}

// L2Norm is the cached norm of docID's weight vector, 0 for unknown ids.
func (idx *PositionalIndex) L2Norm(docID string) float64 {
	if i, ok := idx.docIndex[docID]; ok {
		return idx.docs[i].L2Norm
	}
	return 0
}

// Terms lists the distinct terms of docID in first-seen order.
func (idx *PositionalIndex) Terms(docID string) []string {
	if i, ok := idx.docIndex[docID]; ok {
		return append([]string(nil), idx.docs[i].Terms...)
	}
	return nil
}

func (idx *PositionalIndex) Stats(docID string) (DocStats, bool) {
	i, ok := idx.docIndex[docID]
	if !ok {
		return DocStats{}, false
	}
	s := idx.docs[i]
	s.Terms = append([]string(nil), s.Terms...)
	return s, true
}

// DocNum is the number of indexed documents.
func (idx *PositionalIndex) DocNum() int {
	return len(idx.docs)
}

// Doc returns the id of the i-th document in index order.
func (idx *PositionalIndex) Doc(i int) (string, bool) {
	if i < 0 || i >= len(idx.docs) {
		return "", false
	}
	return idx.docs[i].DocID, true
}

func (idx *PositionalIndex) HasDoc(docID string) bool {
	_, ok := idx.docIndex[docID]
	return ok
}

func (idx *PositionalIndex) NumTerms() int {
	return len(idx.postings)
}
