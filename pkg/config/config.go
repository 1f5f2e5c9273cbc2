// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for the
// PageRank engine, the positional index, the search service, and the ambient
// Redis, logging, and metrics settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	PageRank PageRankConfig `yaml:"pagerank"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// RedisConfig holds Redis connection and caching parameters. An empty Addr
// disables the search cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// PageRankConfig controls the power iteration: the damping factor, the
// L1 convergence bound, and the iteration cap.
type PageRankConfig struct {
	GraphFile     string  `yaml:"graphFile"`
	Damping       float64 `yaml:"damping"`
	Epsilon       float64 `yaml:"epsilon"`
	MaxIterations int     `yaml:"maxIterations"`
}

// IndexConfig points at the document folder indexed at startup.
type IndexConfig struct {
	DocsDir string `yaml:"docsDir"`
}

// SearchConfig controls query execution limits.
type SearchConfig struct {
	MaxResults           int `yaml:"maxResults"`
	DefaultLimit         int `yaml:"defaultLimit"`
	MaxConcurrentQueries int `yaml:"maxConcurrentQueries"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics endpoint. When Port equals the
// server port, metrics are mounted on the main mux.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. Missing values keep their defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with defaults suitable for local runs.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Redis: RedisConfig{
			PoolSize: 10,
			CacheTTL: 60 * time.Second,
		},
		PageRank: PageRankConfig{
			Damping:       0.85,
			Epsilon:       1e-6,
			MaxIterations: 1000,
		},
		Search: SearchConfig{
			MaxResults:           100,
			DefaultLimit:         10,
			MaxConcurrentQueries: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate rejects settings the engines cannot run with.
func (c *Config) Validate() error {
	if c.PageRank.Damping < 0 || c.PageRank.Damping > 1 {
		return fmt.Errorf("pagerank.damping must be within [0, 1], got %v", c.PageRank.Damping)
	}
	if c.PageRank.Epsilon <= 0 {
		return fmt.Errorf("pagerank.epsilon must be positive, got %v", c.PageRank.Epsilon)
	}
	if c.PageRank.MaxIterations <= 0 {
		return fmt.Errorf("pagerank.maxIterations must be positive, got %d", c.PageRank.MaxIterations)
	}
	if c.Search.DefaultLimit <= 0 || c.Search.MaxResults < c.Search.DefaultLimit {
		return fmt.Errorf("search limits invalid: defaultLimit=%d maxResults=%d",
			c.Search.DefaultLimit, c.Search.MaxResults)
	}
	if c.Search.MaxConcurrentQueries <= 0 {
		return fmt.Errorf("search.maxConcurrentQueries must be positive, got %d", c.Search.MaxConcurrentQueries)
	}
	return nil
}

// applyEnvOverrides reads RC_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RC_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RC_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("RC_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("RC_PAGERANK_GRAPH_FILE"); v != "" {
		cfg.PageRank.GraphFile = v
	}
	if v := os.Getenv("RC_PAGERANK_DAMPING"); v != "" {
		if d, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.PageRank.Damping = d
		}
	}
	if v := os.Getenv("RC_PAGERANK_EPSILON"); v != "" {
		if eps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.PageRank.Epsilon = eps
		}
	}
	if v := os.Getenv("RC_PAGERANK_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageRank.MaxIterations = n
		}
	}
	if v := os.Getenv("RC_INDEX_DOCS_DIR"); v != "" {
		cfg.Index.DocsDir = v
	}
	if v := os.Getenv("RC_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RC_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
