package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatusRecorderUnwrap(t *testing.T) {
	inner := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: inner}

	if got := unwrapWriter(rec); got != inner {
		t.Fatalf("expected the inner writer, got %T", got)
	}
	if err := http.NewResponseController(rec).Flush(); err != nil {
		t.Fatalf("flush through recorder: %v", err)
	}
	if !inner.Flushed {
		t.Fatal("expected flush to reach the inner writer")
	}
}

func TestUnwrapWriterLeavesPlainWriter(t *testing.T) {
	inner := httptest.NewRecorder()
	if got := unwrapWriter(inner); got != inner {
		t.Fatalf("expected the same writer, got %T", got)
	}
}
