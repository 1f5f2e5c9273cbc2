package graph

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/rankcore/pkg/errors"
)

const maxLineSize = 1 << 20

// Load reads an edge-list file. See Parse for the format.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening edge list %s: %w", path, err)
	}
	defer f.Close()
	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing edge list %s: %w", path, err)
	}
	return g, nil
}

// Parse builds a graph from an edge list. The first line is the advisory
// vertex count; every following non-blank line is "<source> <destination>".
// Tokens past the second are ignored. The declared count is not enforced.
func Parse(r io.Reader) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	g := New()
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, fmt.Errorf("%w: missing vertex count header", apperrors.ErrMalformedEdge)
	}
	header := strings.TrimSpace(sc.Text())
	declared, err := strconv.Atoi(header)
	if err != nil || declared < 0 {
		return nil, fmt.Errorf("%w: line 1: vertex count %q is not a non-negative integer",
			apperrors.ErrMalformedEdge, header)
	}
	g.declared = declared

	lineNo := 1
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: expected \"<source> <destination>\", got %q",
				apperrors.ErrMalformedEdge, lineNo, sc.Text())
		}
		g.AddEdge(fields[0], fields[1])
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", lineNo+1, err)
	}

	if g.Len() != declared {
		slog.Default().With("component", "graph").Warn("declared vertex count differs from edge list",
			"declared", declared,
			"actual", g.Len(),
		)
	}
	return g, nil
}
