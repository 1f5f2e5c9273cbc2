package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestChildSpansShareTrace(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "build")
	_, child := StartChildSpan(ctx, "index")
	child.SetAttr("docs", 3)
	child.End()
	root.End()

	if child.TraceID != root.TraceID || root.TraceID == "" {
		t.Errorf("trace ids: root %q child %q", root.TraceID, child.TraceID)
	}
	if len(root.Children) != 1 {
		t.Fatalf("children = %d, want 1", len(root.Children))
	}

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	if out := buf.String(); !strings.Contains(out, "span=index") || !strings.Contains(out, "docs=3") {
		t.Errorf("log output missing child span: %s", out)
	}
}

func TestChildWithoutParentStartsTrace(t *testing.T) {
	_, span := StartChildSpan(context.Background(), "orphan")
	if span.TraceID == "" {
		t.Error("orphan span should get a trace id")
	}
}

func TestSetAttrAfterEndIsDropped(t *testing.T) {
	_, span := StartSpan(context.Background(), "load")
	span.SetAttr("before", 1)
	span.End()
	span.SetAttr("after", 2)
	if _, ok := span.Attrs["after"]; ok {
		t.Error("attribute set after End was recorded")
	}
	if span.Attrs["before"] != 1 {
		t.Errorf("attrs = %v, want before=1", span.Attrs)
	}
}
