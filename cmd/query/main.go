// Command query indexes a document folder and prints the best matching
// documents for one or more queries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/tracing"
)

type queryList []string

func (q *queryList) String() string { return strings.Join(*q, "; ") }

func (q *queryList) Set(v string) error {
	*q = append(*q, v)
	return nil
}

func main() {
	var queries queryList
	configPath := flag.String("config", "", "path to config file")
	docsDir := flag.String("docs", "", "document folder (overrides index.docsDir)")
	k := flag.Int("k", 10, "number of documents per query")
	postings := flag.Bool("postings", false, "print the posting list of every query term")
	flag.Var(&queries, "q", "query text; may be repeated")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *docsDir != "" {
		cfg.Index.DocsDir = *docsDir
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Index.DocsDir == "" || len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "usage: query -docs <dir> -q <text> [-q <text>...] [-k n] [-postings]")
		os.Exit(2)
	}

	ctx, root := tracing.StartSpan(context.Background(), "query")
	proc, err := buildProcessor(ctx, cfg.Index.DocsDir)
	if err != nil {
		slog.Error("failed to build index", "dir", cfg.Index.DocsDir, "error", err)
		os.Exit(1)
	}

	_, span := tracing.StartChildSpan(ctx, "search")
	results, err := proc.SearchBatch(ctx, queries, *k, cfg.Search.MaxConcurrentQueries)
	span.SetAttr("queries", len(queries))
	span.End()
	if err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}
	root.End()
	root.Log(slog.Default())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, res := range results {
		fmt.Fprintf(tw, "query: %s\n", res.Query)
		if *postings {
			for _, term := range tokenizer.Terms(res.Query) {
				fmt.Fprintf(tw, "  %s\t%s\n", term, proc.Index().PostingList(term))
			}
		}
		for i, doc := range res.Results {
			fmt.Fprintf(tw, "  %d\t%s\t%.6f\ttp=%.6f\tvs=%.6f\n", i+1, doc.DocID, doc.Score, doc.Proximity, doc.VectorSpace)
		}
	}
	tw.Flush()
}

// buildProcessor indexes dir under a build_index span of the trace in ctx.
func buildProcessor(ctx context.Context, dir string) (*query.Processor, error) {
	_, span := tracing.StartChildSpan(ctx, "build_index")
	defer span.End()
	proc, err := query.NewFromFolder(dir)
	if err != nil {
		return nil, err
	}
	span.SetAttr("docs", proc.Index().DocNum())
	return proc, nil
}
