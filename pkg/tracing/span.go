// Package tracing provides lightweight spans that propagate through contexts
// and are logged as a tree via slog when the root ends.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type contextKey struct{}

// Span represents a timed operation within a trace.
type Span struct {
	Name     string
	TraceID  string
	Start    time.Time
	Duration time.Duration
	Children []*Span
	Attrs    map[string]any
	mu       sync.Mutex
	ended    bool
}

// StartSpan creates a root span with a fresh trace id and stores it in the
// returned context.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	span := newSpan(name, uuid.NewString())
	return context.WithValue(ctx, contextKey{}, span), span
}

// StartChildSpan creates a child of the span in ctx, or a root span when ctx
// carries none.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := SpanFromContext(ctx)
	if parent == nil {
		return StartSpan(ctx, name)
	}
	child := newSpan(name, parent.TraceID)
	parent.mu.Lock()
	parent.Children = append(parent.Children, child)
	parent.mu.Unlock()
	return context.WithValue(ctx, contextKey{}, child), child
}

func newSpan(name, traceID string) *Span {
	return &Span{
		Name:    name,
		TraceID: traceID,
		Start:   time.Now(),
		Attrs:   make(map[string]any),
	}
}

func (s *Span) End() {
	s.mu.Lock()
	s.Duration = time.Since(s.Start)
	s.ended = true
	s.mu.Unlock()
}

// SetAttr records an attribute. Attributes set after End are dropped.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	if !s.ended {
		s.Attrs[key] = value
	}
	s.mu.Unlock()
}

func SpanFromContext(ctx context.Context) *Span {
	if span, ok := ctx.Value(contextKey{}).(*Span); ok {
		return span
	}
	return nil
}

// Log writes the span tree to logger at debug level.
func (s *Span) Log(logger *slog.Logger) {
	s.log(logger, 0)
}

func (s *Span) log(logger *slog.Logger, depth int) {
	s.mu.Lock()
	attrs := []any{
		"trace_id", s.TraceID,
		"span", s.Name,
		"duration_ms", s.Duration.Milliseconds(),
		"depth", depth,
	}
	for k, v := range s.Attrs {
		attrs = append(attrs, k, v)
	}
	children := append([]*Span(nil), s.Children...)
	s.mu.Unlock()

	logger.Debug("span", attrs...)
	for _, child := range children {
		child.log(logger, depth+1)
	}
}
