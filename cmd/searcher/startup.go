package main

import (
	"context"
	"errors"

	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/rankcore/internal/pagerank"
	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/rankcore/pkg/tracing"
)

func buildIndex(ctx context.Context, dir string) (*index.PositionalIndex, error) {
	_, span := tracing.StartChildSpan(ctx, "build_index")
	defer span.End()
	idx, err := index.NewFromFolder(dir)
	if err != nil {
		return nil, err
	}
	span.SetAttr("docs", idx.DocNum())
	span.SetAttr("terms", idx.NumTerms())
	return idx, nil
}

// computePageRank also returns the engine alongside ErrNotConverged so the
// caller can serve best-effort ranks.
func computePageRank(ctx context.Context, path string, params pagerank.Params) (*pagerank.Engine, error) {
	_, span := tracing.StartChildSpan(ctx, "pagerank")
	defer span.End()
	engine, err := pagerank.New(path, params)
	if err != nil && !errors.Is(err, apperrors.ErrNotConverged) {
		return nil, err
	}
	span.SetAttr("vertices", engine.NumVertices())
	span.SetAttr("declared_vertices", engine.Graph().Declared())
	span.SetAttr("iterations", engine.Iterations())
	span.SetAttr("converged", engine.Converged())
	return engine, err
}
