package css

import (
	"testing"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge/mock"
)

func TestGetComputedStyleForNode(t *testing.T) {
	h := New(mock.New())
	result, err := h.Handle("getComputedStyleForNode", []byte(`{"nodeId":4}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	props := result.(map[string][]bridge.CSSProperty)["computedStyle"]
	found := false
	for _, p := range props {
		if p.Name == "display" && p.Value == "block" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a display:block property, got %+v", props)
	}
}

func TestGetComputedStyleForNodeUnknown(t *testing.T) {
	h := New(mock.New())
	_, err := h.Handle("getComputedStyleForNode", []byte(`{"nodeId":999}`))
	if err == nil {
		t.Fatal("expected error for an unknown node")
	}
}

func TestGetBoxModel(t *testing.T) {
	h := New(mock.New())
	result, err := h.Handle("getBoxModel", []byte(`{"nodeId":4}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model := result.(map[string]bridge.BoxModel)["model"]
	if model.Width <= 0 || model.Height <= 0 {
		t.Fatalf("expected a positive box size, got %+v", model)
	}
}

func TestGetBoxModelUnknown(t *testing.T) {
	h := New(mock.New())
	_, err := h.Handle("getBoxModel", []byte(`{"nodeId":999}`))
	if err == nil {
		t.Fatal("expected error for an unknown node")
	}
}

func TestUnknownMethod(t *testing.T) {
	h := New(mock.New())
	_, err := h.Handle("bogus", nil)
	if err == nil || err.Code != -32601 {
		t.Fatalf("expected method not found, got %v", err)
	}
}
