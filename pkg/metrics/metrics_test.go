package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.PageRankIterations.Set(12)
	m.CacheHitsTotal.Inc()
	m.SearchQueriesTotal.WithLabelValues("miss").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := make(map[string]bool)
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{"rankcore_pagerank_iterations", "rankcore_cache_hits_total", "rankcore_search_queries_total"} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg).DocsIndexed.Set(4)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rankcore_index_documents 4") {
		t.Errorf("scrape missing index gauge:\n%s", rec.Body.String())
	}
}
