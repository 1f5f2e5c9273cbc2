// Package query ranks indexed documents against free-text queries by blending
// term proximity with vector-space similarity.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/topk"
	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
)

// ctxCheckInterval is how many documents are scored between cancellation
// checks.
const ctxCheckInterval = 256

type SearchResult struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	TotalDocs int                `json:"total_docs"`
	Results   []ranker.ScoredDoc `json:"results"`
}

// IDs returns the ranked document ids.
func (r *SearchResult) IDs() []string {
	ids := make([]string, len(r.Results))
	for i, d := range r.Results {
		ids[i] = d.DocID
	}
	return ids
}

// Processor is read-only after construction and safe for concurrent use.
type Processor struct {
	idx    *index.PositionalIndex
	logger *slog.Logger
}

func New(idx *index.PositionalIndex) *Processor {
	return &Processor{
		idx:    idx,
		logger: slog.Default().With("component", "query-processor"),
	}
}

// NewFromFolder indexes dir and returns a processor over it.
func NewFromFolder(dir string) (*Processor, error) {
	idx, err := index.NewFromFolder(dir)
	if err != nil {
		return nil, err
	}
	return New(idx), nil
}

func (p *Processor) Index() *index.PositionalIndex {
	return p.idx
}

// TopKDocs returns the ids of the k most relevant documents for query, best
// first. Ties keep index order.
func (p *Processor) TopKDocs(query string, k int) []string {
	result, _ := p.Search(context.Background(), query, k)
	return result.IDs()
}

// Search scores every document against query and keeps the best k. It fails
// only when ctx is done.
func (p *Processor) Search(ctx context.Context, query string, k int) (*SearchResult, error) {
	start := time.Now()
	q := ranker.NewQuery(p.idx, query)
	n := p.idx.DocNum()
	if k > n {
		k = n
	}
	result := &SearchResult{
		Query:     query,
		Terms:     q.Terms,
		TotalDocs: n,
		Results:   []ranker.ScoredDoc{},
	}
	if k <= 0 {
		return result, nil
	}

	scored := make([]ranker.ScoredDoc, n)
	sel := topk.New(k)
	for i := 0; i < n; i++ {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return result, fmt.Errorf("scoring query %q: %w", query, err)
			}
		}
		docID, _ := p.idx.Doc(i)
		scored[i] = ranker.Score(p.idx, q, docID)
		sel.Offer(topk.Item{ID: docID, Index: i, Score: scored[i].Score})
	}
	for _, item := range sel.Results() {
		result.Results = append(result.Results, scored[item.Index])
	}

	p.logger.Debug("query scored",
		"query", query,
		"terms", len(q.Terms),
		"docs", n,
		"returned", len(result.Results),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// SearchBatch runs queries concurrently, at most concurrency at a time, and
// returns results in query order.
func (p *Processor) SearchBatch(ctx context.Context, queries []string, k, concurrency int) ([]*SearchResult, error) {
	results := make([]*SearchResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, q := range queries {
		g.Go(func() error {
			r, err := p.Search(gctx, q, k)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Explain scores a single document against query. Unknown ids are
// ErrNotFound.
func (p *Processor) Explain(query, docID string) (ranker.ScoredDoc, error) {
	if !p.idx.HasDoc(docID) {
		return ranker.ScoredDoc{}, fmt.Errorf("%w: document %q", apperrors.ErrNotFound, docID)
	}
	return ranker.Score(p.idx, ranker.NewQuery(p.idx, query), docID), nil
}

// Relevance is 0.6*TPScore + 0.4*VSScore of docID for query.
func (p *Processor) Relevance(query, docID string) float64 {
	return ranker.Relevance(p.idx, ranker.NewQuery(p.idx, query), docID)
}

func (p *Processor) TPScore(query, docID string) float64 {
	return ranker.TPScore(p.idx, tokenizer.Terms(query), docID)
}

func (p *Processor) VSScore(query, docID string) float64 {
	return ranker.VSScore(p.idx, ranker.NewQuery(p.idx, query), docID)
}
