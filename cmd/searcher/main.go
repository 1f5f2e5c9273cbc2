package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/pagerank"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/middleware"
	pkgredis "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/tracing"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	m := metrics.New(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startupCtx, root := tracing.StartSpan(ctx, "startup")

	var idx *index.PositionalIndex
	if cfg.Index.DocsDir != "" {
		idx, err = buildIndex(startupCtx, cfg.Index.DocsDir)
		if err != nil {
			slog.Error("failed to build index", "dir", cfg.Index.DocsDir, "error", err)
			os.Exit(1)
		}
		m.DocsIndexed.Set(float64(idx.DocNum()))
		m.IndexTerms.Set(float64(idx.NumTerms()))
	} else {
		slog.Warn("no document folder configured, search disabled")
	}

	var engine *pagerank.Engine
	if cfg.PageRank.GraphFile != "" {
		engine, err = computePageRank(startupCtx, cfg.PageRank.GraphFile, pagerank.FromConfig(cfg.PageRank))
		switch {
		case errors.Is(err, apperrors.ErrNotConverged):
			slog.Warn("serving best-effort ranks", "error", err)
		case err != nil:
			slog.Error("failed to compute pagerank", "file", cfg.PageRank.GraphFile, "error", err)
			os.Exit(1)
		}
		m.GraphVertices.Set(float64(engine.NumVertices()))
		m.GraphEdges.Set(float64(engine.NumEdges()))
		m.PageRankIterations.Set(float64(engine.Iterations()))
		m.PageRankDelta.Set(engine.Delta())
		if engine.Converged() {
			m.PageRankConverged.Set(1)
		}
	} else {
		slog.Warn("no graph file configured, pagerank disabled")
	}

	root.End()
	root.Log(slog.Default())

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = pkgredis.NewClient(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			// Each process start gets its own keyspace so results from a
			// previous corpus are never served.
			queryCache = cache.New(redisClient, cfg.Redis.CacheTTL, uuid.NewString())
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	checker := health.NewChecker(2 * time.Second)
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if idx == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d documents", idx.DocNum())}
	})
	checker.Register("graph", func(ctx context.Context) health.ComponentHealth {
		switch {
		case engine == nil:
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		case !engine.Converged():
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "ranks did not converge"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d vertices", engine.NumVertices())}
	})
	if cfg.Redis.Addr != "" {
		checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
			if redisClient == nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: "unreachable at startup"}
			}
			if err := redisClient.Ping(ctx); err != nil {
				return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
			}
			return health.ComponentHealth{Status: health.StatusUp}
		})
	}

	deps := handler.Deps{
		Cache:        queryCache,
		Metrics:      m,
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxResults:   cfg.Search.MaxResults,
	}
	if idx != nil {
		proc := query.New(idx)
		deps.Searcher = proc
		deps.Explainer = proc
		deps.Terms = idx
	}
	if engine != nil {
		deps.Ranker = engine
	}
	h := handler.New(deps)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port == cfg.Server.Port {
			mux.Handle("GET /metrics", metrics.Handler(prometheus.DefaultGatherer))
		} else {
			shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, prometheus.DefaultGatherer)
			defer shutdownMetrics(context.Background())
		}
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
