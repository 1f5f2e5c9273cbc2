package ranker

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/tokenizer"
)

const (
	proximityWeight = 0.6
	vectorWeight    = 0.4

	// proximityWindow seeds the minimum gap search; single-term queries score
	// 1/proximityWindow.
	proximityWindow = 17
)

// Index is the read side of the positional index the scores need.
type Index interface {
	Positions(term, docID string) []int
	Weight(term, docID string) float64
	TextWeight(term, text string) float64
	L2Norm(docID string) float64
}

// Query is a tokenised query and its weight vector against its own text,
// one component per token. Build it once and score it against every
// document.
type Query struct {
	Text   string
	Terms  []string
	vector []float64
	norm   float64
}

func NewQuery(idx Index, text string) Query {
	terms := tokenizer.Terms(text)
	vector := make([]float64, len(terms))
	for i, t := range terms {
		vector[i] = idx.TextWeight(t, text)
	}
	return Query{
		Text:   text,
		Terms:  terms,
		vector: vector,
		norm:   floats.Norm(vector, 2),
	}
}

type ScoredDoc struct {
	DocID       string  `json:"doc_id"`
	Score       float64 `json:"score"`
	Proximity   float64 `json:"tp_score"`
	VectorSpace float64 `json:"vs_score"`
}

// Score blends both signals for one document.
func Score(idx Index, q Query, docID string) ScoredDoc {
	tp := TPScore(idx, q.Terms, docID)
	vs := VSScore(idx, q, docID)
	return ScoredDoc{
		DocID:       docID,
		Score:       proximityWeight*tp + vectorWeight*vs,
		Proximity:   tp,
		VectorSpace: vs,
	}
}

func Relevance(idx Index, q Query, docID string) float64 {
	return Score(idx, q, docID).Score
}

// TPScore rewards documents where adjacent query terms occur close together,
// in query order. The smallest positive gap over all adjacent pairs, capped
// at proximityWindow, gives len(terms)/gap. Pairs with a term missing from
// the document contribute nothing.
func TPScore(idx Index, terms []string, docID string) float64 {
	dist := proximityWindow
	if len(terms) <= 1 {
		return 1 / float64(dist)
	}
	for i := 0; i+1 < len(terms); i++ {
		first := idx.Positions(terms[i], docID)
		second := idx.Positions(terms[i+1], docID)
		if gap := minForwardGap(first, second); gap < dist {
			dist = gap
		}
	}
	return float64(len(terms)) / float64(dist)
}

// minForwardGap merge-scans two ascending position lists and returns the
// smallest b-a with a < b, or math.MaxInt when no such pair is seen. The
// pointer on the smaller position advances; equal positions advance a.
func minForwardGap(a, b []int) int {
	best := math.MaxInt
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] > b[j] {
			j++
			continue
		}
		if a[i] < b[j] && b[j]-a[i] < best {
			best = b[j] - a[i]
		}
		i++
	}
	return best
}

// VSScore is the cosine similarity between the query's text-weight vector
// and the document's tf-idf weights for the same tokens. It is 0 when either
// vector has zero norm.
func VSScore(idx Index, q Query, docID string) float64 {
	docNorm := idx.L2Norm(docID)
	if q.norm == 0 || docNorm == 0 {
		return 0
	}
	doc := make([]float64, len(q.Terms))
	for i, t := range q.Terms {
		doc[i] = idx.Weight(t, docID)
	}
	return floats.Dot(q.vector, doc) / (q.norm * docNorm)
}
