package telemetry

import (
	"context"
	"errors"
	"testing"
)

func TestTraceRunsFnAndPropagatesResult(t *testing.T) {
	tr := New(Config{})

	called := false
	err := tr.Trace(context.Background(), "DOM", "enable", func(context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected fn to be called")
	}
}

func TestTracePropagatesError(t *testing.T) {
	tr := New(Config{})
	want := errors.New("boom")

	err := tr.Trace(context.Background(), "Runtime", "evaluate", func(context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestTraceFilterSkipsSpanButStillRunsFn(t *testing.T) {
	filtered := false
	tr := New(Config{Filter: func(domain, method string) bool {
		filtered = true
		return false
	}})

	called := false
	_ = tr.Trace(context.Background(), "Network", "enable", func(context.Context) error {
		called = true
		return nil
	})
	if !filtered {
		t.Fatal("expected filter to be consulted")
	}
	if !called {
		t.Fatal("expected fn to still run when filtered out of tracing")
	}
}
