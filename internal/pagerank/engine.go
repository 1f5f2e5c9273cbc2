// Package pagerank computes link authority over a graph.Graph by power
// iteration with teleportation. Ranks are computed once at construction and
// are read-only afterwards, so an Engine is safe for concurrent readers.
package pagerank

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/graph"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/topk"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
)

const DefaultMaxIterations = 1000

// Observer is called after every iteration with the new rank vector and its
// L1 distance from the previous one. ranks must not be retained.
type Observer func(iteration int, ranks []float64, delta float64)

// Params configures the iteration. Epsilon bounds the sum of absolute rank
// changes, so larger graphs need a proportionally smaller value.
type Params struct {
	Damping       float64
	Epsilon       float64
	MaxIterations int
	Observer      Observer
}

func FromConfig(cfg config.PageRankConfig) Params {
	return Params{
		Damping:       cfg.Damping,
		Epsilon:       cfg.Epsilon,
		MaxIterations: cfg.MaxIterations,
	}
}

func (p Params) validate() error {
	if p.Damping < 0 || p.Damping > 1 {
		return fmt.Errorf("%w: damping %v outside [0, 1]", apperrors.ErrInvalidParameter, p.Damping)
	}
	if !(p.Epsilon > 0) {
		return fmt.Errorf("%w: epsilon must be positive, got %v", apperrors.ErrInvalidParameter, p.Epsilon)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive, got %d", apperrors.ErrInvalidParameter, p.MaxIterations)
	}
	return nil
}

type Engine struct {
	graph      *graph.Graph
	params     Params
	iterations int
	delta      float64
	converged  bool
	logger     *slog.Logger
}

// New loads the edge list at path and computes ranks. See NewFromGraph for
// the non-convergence contract.
func New(path string, params Params) (*Engine, error) {
	g, err := graph.Load(path)
	if err != nil {
		return nil, err
	}
	return NewFromGraph(g, params)
}

// NewFromGraph computes ranks over g and writes them into its vertices. When
// the iteration cap is reached first, it returns the engine holding the last
// iterate together with an error wrapping ErrNotConverged.
func NewFromGraph(g *graph.Graph, params Params) (*Engine, error) {
	if params.MaxIterations == 0 {
		params.MaxIterations = DefaultMaxIterations
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		graph:  g,
		params: params,
		logger: slog.Default().With("component", "pagerank"),
	}
	start := time.Now()
	e.compute()
	e.logger.Info("pagerank computed",
		"vertices", g.Len(),
		"edges", g.NumEdges(),
		"iterations", e.iterations,
		"delta", e.delta,
		"converged", e.converged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if !e.converged {
		return e, fmt.Errorf("%w after %d iterations (delta %g > epsilon %g)",
			apperrors.ErrNotConverged, e.iterations, e.delta, params.Epsilon)
	}
	return e, nil
}

func (e *Engine) compute() {
	n := e.graph.Len()
	if n == 0 {
		e.converged = true
		return
	}
	cur := make([]float64, n)
	next := make([]float64, n)
	for i := range cur {
		cur[i] = 1 / float64(n)
	}
	for e.iterations < e.params.MaxIterations {
		step(e.graph, e.params.Damping, cur, next)
		e.iterations++
		e.delta = floats.Distance(next, cur, 1)
		if e.params.Observer != nil {
			e.params.Observer(e.iterations, next, e.delta)
		}
		e.logger.Debug("pagerank iteration", "iteration", e.iterations, "delta", e.delta)
		cur, next = next, cur
		if e.delta <= e.params.Epsilon {
			e.converged = true
			break
		}
	}
	e.graph.SetRanks(cur)
}

// step computes one power iteration from cur into next. Every vertex receives
// the teleport share (1-d)/N. A vertex with out-degree k sends d*p/k along
// each edge; a dangling vertex sends d*p/N to every vertex, itself included.
func step(g *graph.Graph, d float64, cur, next []float64) {
	n := float64(len(cur))
	dangling := 0.0
	for i := range cur {
		if g.At(i).OutDegree() == 0 {
			dangling += cur[i]
		}
	}
	base := (1-d)/n + d*dangling/n
	for i := range next {
		next[i] = base
	}
	for i := range cur {
		v := g.At(i)
		deg := v.OutDegree()
		if deg == 0 {
			continue
		}
		share := d * cur[i] / float64(deg)
		for _, t := range v.Out {
			next[t] += share
		}
	}
}

// PageRankOf returns the rank of the page with the given identifier.
func (e *Engine) PageRankOf(id string) (float64, error) {
	seq, ok := e.graph.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrUnknownVertex, id)
	}
	return e.graph.At(seq).Rank, nil
}

// OutLinks lists the pages id links to, in input order with repeats.
func (e *Engine) OutLinks(id string) ([]string, error) {
	seq, ok := e.graph.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownVertex, id)
	}
	return e.graph.Targets(seq), nil
}

func (e *Engine) NumEdges() int {
	return e.graph.NumEdges()
}

func (e *Engine) NumVertices() int {
	return e.graph.Len()
}

func (e *Engine) Iterations() int {
	return e.iterations
}

func (e *Engine) Converged() bool {
	return e.converged
}

// Delta is the L1 change of the final iteration.
func (e *Engine) Delta() float64 {
	return e.delta
}

func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// TopKPageRank returns the k page identifiers with the highest rank in
// descending order. Equal ranks keep first-seen order; k is clamped to the
// vertex count.
func (e *Engine) TopKPageRank(k int) []string {
	return e.selectTop(k).IDs()
}

// TopKRanked is TopKPageRank with the ranks attached.
func (e *Engine) TopKRanked(k int) []topk.Item {
	return e.selectTop(k).Results()
}

func (e *Engine) selectTop(k int) *topk.Selector {
	n := e.graph.Len()
	if k > n {
		k = n
	}
	sel := topk.New(k)
	for seq := 0; seq < n; seq++ {
		v := e.graph.At(seq)
		sel.Offer(topk.Item{ID: v.ID, Index: seq, Score: v.Rank})
	}
	return sel
}
