package page

import "testing"

func TestEnableDisable(t *testing.T) {
	h := New()
	if _, err := h.Handle("enable", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.enabled {
		t.Fatal("expected enabled to be true")
	}
	if _, err := h.Handle("disable", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.enabled {
		t.Fatal("expected enabled to be false")
	}
}

func TestNavigateStoresURLAndReturnsIDs(t *testing.T) {
	h := New()
	result, err := h.Handle("navigate", []byte(`{"url":"https://example.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids := result.(map[string]string)
	if ids["frameId"] == "" || ids["loaderId"] == "" {
		t.Fatalf("expected non-empty frameId/loaderId, got %+v", ids)
	}
	if h.url != "https://example.com" {
		t.Fatalf("expected stored url to update, got %q", h.url)
	}
}

func TestNavigateMissingURLIsInvalidParams(t *testing.T) {
	h := New()
	_, err := h.Handle("navigate", []byte(`{}`))
	if err == nil || err.Code != -32602 {
		t.Fatalf("expected invalid params, got %v", err)
	}
}

func TestNavigateMalformedParamsIsInvalidParams(t *testing.T) {
	h := New()
	_, err := h.Handle("navigate", []byte(`{"url":123}`))
	if err == nil || err.Code != -32602 {
		t.Fatalf("expected invalid params, got %v", err)
	}
}

func TestCaptureScreenshotReturnsConstantData(t *testing.T) {
	h := New()
	first, _ := h.Handle("captureScreenshot", nil)
	second, _ := h.Handle("captureScreenshot", nil)
	if first.(map[string]string)["data"] != second.(map[string]string)["data"] {
		t.Fatal("expected captureScreenshot to return a constant placeholder")
	}
}

func TestGetFrameTreeReflectsNavigation(t *testing.T) {
	h := New()
	h.Handle("navigate", []byte(`{"url":"https://example.com/page"}`))

	result, err := h.Handle("getFrameTree", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	frame := result.(map[string]any)["frame"].(map[string]string)
	if frame["url"] != "https://example.com/page" {
		t.Fatalf("expected frame tree to reflect navigated url, got %+v", frame)
	}
}

func TestUnknownMethod(t *testing.T) {
	h := New()
	_, err := h.Handle("bogus", nil)
	if err == nil || err.Code != -32601 {
		t.Fatalf("expected method not found, got %v", err)
	}
}
