package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageRank.Damping != 0.85 {
		t.Errorf("damping = %v, want 0.85", cfg.PageRank.Damping)
	}
	if cfg.PageRank.MaxIterations != 1000 {
		t.Errorf("maxIterations = %d, want 1000", cfg.PageRank.MaxIterations)
	}
	if cfg.Redis.Addr != "" {
		t.Errorf("redis addr = %q, want empty (cache disabled)", cfg.Redis.Addr)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankcore.yaml")
	yml := `
pagerank:
  graphFile: graph.txt
  damping: 0.5
  epsilon: 0.001
redis:
  cacheTTL: 5s
search:
  defaultLimit: 5
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RC_INDEX_DOCS_DIR", "/tmp/docs")
	t.Setenv("RC_PAGERANK_MAX_ITERATIONS", "42")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PageRank.GraphFile != "graph.txt" || cfg.PageRank.Damping != 0.5 || cfg.PageRank.Epsilon != 0.001 {
		t.Errorf("pagerank = %+v", cfg.PageRank)
	}
	if cfg.PageRank.MaxIterations != 42 {
		t.Errorf("maxIterations = %d, want 42 from env", cfg.PageRank.MaxIterations)
	}
	if cfg.Index.DocsDir != "/tmp/docs" {
		t.Errorf("docsDir = %q", cfg.Index.DocsDir)
	}
	if cfg.Redis.CacheTTL != 5*time.Second {
		t.Errorf("cacheTTL = %v", cfg.Redis.CacheTTL)
	}
	if cfg.Search.MaxResults != 100 {
		t.Errorf("maxResults default lost: %d", cfg.Search.MaxResults)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"damping above one", func(c *Config) { c.PageRank.Damping = 1.5 }},
		{"negative damping", func(c *Config) { c.PageRank.Damping = -0.1 }},
		{"zero epsilon", func(c *Config) { c.PageRank.Epsilon = 0 }},
		{"zero iterations", func(c *Config) { c.PageRank.MaxIterations = 0 }},
		{"limit above max", func(c *Config) { c.Search.DefaultLimit = 500 }},
		{"no concurrency", func(c *Config) { c.Search.MaxConcurrentQueries = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
