package tracing

import (
	"context"
	"testing"
)

func TestStartSpanIsRetrievableFromContext(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "root", "trace-1")
	got := SpanFromContext(ctx)
	if got != span {
		t.Error("SpanFromContext should return the span StartSpan just created")
	}
	if span.TraceID != "trace-1" {
		t.Errorf("TraceID = %q, want trace-1", span.TraceID)
	}
}

func TestStartChildSpanLinksToParentAndInheritsTraceID(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "root", "trace-1")
	_, child := StartChildSpan(ctx, "child")

	if child.TraceID != "trace-1" {
		t.Errorf("child TraceID = %q, want inherited trace-1", child.TraceID)
	}
	if len(root.Children) != 1 || root.Children[0] != child {
		t.Errorf("root.Children = %v, want [child]", root.Children)
	}
}

func TestStartChildSpanWithoutParentHasNoTraceID(t *testing.T) {
	_, child := StartChildSpan(context.Background(), "orphan")
	if child.TraceID != "" {
		t.Errorf("TraceID = %q, want empty for a childless-context child span", child.TraceID)
	}
}

func TestSpanFromContextWithoutSpanReturnsNil(t *testing.T) {
	if got := SpanFromContext(context.Background()); got != nil {
		t.Errorf("SpanFromContext on a bare context = %v, want nil", got)
	}
}

func TestEndRecordsDuration(t *testing.T) {
	_, span := StartSpan(context.Background(), "root", "trace-1")
	span.End()
	if span.EndTime.Before(span.StartTime) {
		t.Error("EndTime should not be before StartTime")
	}
	if span.Duration < 0 {
		t.Errorf("Duration = %v, want non-negative", span.Duration)
	}
}

func TestSetAttrStoresValue(t *testing.T) {
	_, span := StartSpan(context.Background(), "root", "trace-1")
	span.SetAttr("results", 5)
	if span.Attrs["results"] != 5 {
		t.Errorf("Attrs[results] = %v, want 5", span.Attrs["results"])
	}
}
