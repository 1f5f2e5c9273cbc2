package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/topk"
	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/metrics"
)

type Searcher interface {
	Search(ctx context.Context, q string, k int) (*query.SearchResult, error)
}

// Explainer scores one document against a query.
type Explainer interface {
	Explain(q, docID string) (ranker.ScoredDoc, error)
}

type TermLookup interface {
	Postings(term string) index.PostingList
	DocFrequency(term string) int
}

type PageRanker interface {
	TopKRanked(k int) []topk.Item
	PageRankOf(id string) (float64, error)
	OutLinks(id string) ([]string, error)
}

// Deps wires the handler. The index-backed fields and Ranker may each be nil
// when the service runs without a corpus or without a graph; Cache may be
// nil.
type Deps struct {
	Searcher     Searcher
	Explainer    Explainer
	Terms        TermLookup
	Ranker       PageRanker
	Cache        *cache.QueryCache
	Metrics      *metrics.Metrics
	DefaultLimit int
	MaxResults   int
}

type Handler struct {
	Deps
	logger *slog.Logger
}

func New(deps Deps) *Handler {
	return &Handler{
		Deps:   deps,
		logger: logger.WithComponent("search-handler"),
	}
}

// Register mounts every endpoint on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/score", h.Score)
	mux.HandleFunc("GET /api/v1/terms/{term}", h.Term)
	mux.HandleFunc("GET /api/v1/pagerank/top", h.TopPages)
	mux.HandleFunc("GET /api/v1/pagerank/rank", h.PageRank)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if h.Searcher == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "document index not loaded"))
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	limit, err := h.parseLimit(r, "limit")
	if err != nil {
		h.writeError(w, err)
		return
	}

	var result *query.SearchResult
	cacheHit := false
	if h.Cache != nil {
		result, cacheHit, err = h.Cache.GetOrCompute(ctx, q, limit, func() (*query.SearchResult, error) {
			return h.Searcher.Search(ctx, q, limit)
		})
	} else {
		result, err = h.Searcher.Search(ctx, q, limit)
	}
	if err != nil {
		h.Metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		log.Error("search execution failed", "query", q, "error", err)
		h.writeError(w, fmt.Errorf("%w: %v", apperrors.ErrInternal, err))
		return
	}

	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.Metrics.CacheHitsTotal.Inc()
	} else if h.Cache != nil {
		h.Metrics.CacheMissesTotal.Inc()
	}
	resultType := cacheStatus
	if len(result.Results) == 0 {
		resultType = "zero_result"
	}
	h.Metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	h.Metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	h.Metrics.SearchResultsCount.Observe(float64(len(result.Results)))

	log.Info("search completed",
		"query", q,
		"terms", result.Terms,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, result)
}

// Score explains the relevance of one document for a query.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	if h.Explainer == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "document index not loaded"))
		return
	}
	q, docID := r.URL.Query().Get("q"), r.URL.Query().Get("doc")
	if q == "" || docID == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameters 'q' and 'doc' are required"))
		return
	}
	scored, err := h.Explainer.Explain(q, docID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, scored)
}

// Term reports the document frequency and postings of a single term.
func (h *Handler) Term(w http.ResponseWriter, r *http.Request) {
	if h.Terms == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "document index not loaded"))
		return
	}
	terms := tokenizer.Terms(r.PathValue("term"))
	if len(terms) != 1 {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"expected a single term, got %d after normalisation", len(terms)))
		return
	}
	postings := h.Terms.Postings(terms[0])
	h.writeJSON(w, http.StatusOK, map[string]any{
		"term":          terms[0],
		"doc_frequency": h.Terms.DocFrequency(terms[0]),
		"postings":      postings,
	})
}

func (h *Handler) TopPages(w http.ResponseWriter, r *http.Request) {
	if h.Ranker == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "link graph not loaded"))
		return
	}
	k, err := h.parseLimit(r, "k")
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"k":     k,
		"pages": h.Ranker.TopKRanked(k),
	})
}

func (h *Handler) PageRank(w http.ResponseWriter, r *http.Request) {
	if h.Ranker == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "link graph not loaded"))
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'id' is required"))
		return
	}
	rank, err := h.Ranker.PageRankOf(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	links, err := h.Ranker.OutLinks(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"id": id, "rank": rank, "out_links": links})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.Cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.Cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	if err := h.Cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, fmt.Errorf("%w: %v", apperrors.ErrInternal, err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// parseLimit reads a positive integer parameter, defaulting to DefaultLimit
// and capping at MaxResults.
func (h *Handler) parseLimit(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return h.DefaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "%s must be a positive integer", name)
	}
	if n > h.MaxResults {
		n = h.MaxResults
	}
	return n, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	h.writeJSON(w, apperrors.HTTPStatusCode(err), map[string]string{"error": err.Error()})
}
