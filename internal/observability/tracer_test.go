package observability

import (
	"context"
	"errors"
	"testing"
)

func TestTracer_StartEnd_RecordsSpan(t *testing.T) {
	tr := NewTracer(DefaultTracerConfig())
	ctx := context.Background()

	span := tr.StartSpan(ctx, "store_schedule", map[string]string{"schedule_id": "sch-1"})
	tr.EndSpan(span, nil)

	if tr.SpanCount() != 1 {
		t.Fatalf("SpanCount() = %d, want 1", tr.SpanCount())
	}
	spans := tr.Spans(1)
	if spans[0].Operation != "store_schedule" {
		t.Errorf("Operation = %q", spans[0].Operation)
	}
	if spans[0].Status != SpanOK {
		t.Errorf("Status = %d, want SpanOK", spans[0].Status)
	}
	if spans[0].EndTime.Before(spans[0].StartTime) {
		t.Error("EndTime should not be before StartTime")
	}
}

func TestTracer_EndSpan_RecordsError(t *testing.T) {
	tr := NewTracer(DefaultTracerConfig())
	span := tr.StartSpan(context.Background(), "check_feasibility", nil)
	tr.EndSpan(span, errors.New("solver: context deadline exceeded"))

	spans := tr.Spans(1)
	if spans[0].Status != SpanError {
		t.Errorf("Status = %d, want SpanError", spans[0].Status)
	}
	if spans[0].Attrs["error"] == "" {
		t.Error("expected error attr to be set")
	}
}

func TestTracer_Disabled(t *testing.T) {
	tr := NewTracer(TracerConfig{Enabled: false})
	span := tr.StartSpan(context.Background(), "noop", nil)
	tr.EndSpan(span, nil)
	if tr.SpanCount() != 0 {
		t.Errorf("SpanCount() = %d, want 0 when disabled", tr.SpanCount())
	}
}

func TestTracer_RingBuffer(t *testing.T) {
	tr := NewTracer(TracerConfig{Enabled: true, MaxSpans: 3})
	for i := 0; i < 5; i++ {
		span := tr.StartSpan(context.Background(), "op", nil)
		tr.EndSpan(span, nil)
	}
	if tr.SpanCount() != 3 {
		t.Errorf("SpanCount() = %d, want 3 (ring buffer capped)", tr.SpanCount())
	}
}
