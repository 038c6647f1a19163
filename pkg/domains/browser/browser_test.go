package browser

import "testing"

func testVersion() VersionInfo {
	return VersionInfo{
		ProtocolVersion: "1.3",
		Product:         "Corten/1.0",
		Revision:        "deadbeef",
		UserAgent:       "Corten-DevTools/1.0",
		JSVersion:       "12.0",
	}
}

func TestGetVersionReturnsAllFiveFields(t *testing.T) {
	h := New(testVersion(), []string{"corten-devtools"})
	result, err := h.Handle("getVersion", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := result.(map[string]string)
	for _, key := range []string{"protocolVersion", "product", "revision", "userAgent", "jsVersion"} {
		if fields[key] == "" {
			t.Fatalf("expected non-empty %q, got %+v", key, fields)
		}
	}
}

func TestGetBrowserCommandLineEchoesArgv(t *testing.T) {
	argv := []string{"corten-devtools", "serve", "--port=9222"}
	h := New(testVersion(), argv)
	result, err := h.Handle("getBrowserCommandLine", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := result.(map[string][]string)["arguments"]
	if len(got) != len(argv) {
		t.Fatalf("expected %v, got %v", argv, got)
	}
}

func TestCloseIsNoop(t *testing.T) {
	h := New(testVersion(), nil)
	if _, err := h.Handle("close", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnknownMethodNotFound(t *testing.T) {
	h := New(testVersion(), nil)
	_, err := h.Handle("vanish", nil)
	if err == nil || err.Code != -32601 {
		t.Fatalf("expected method not found, got %v", err)
	}
}

func TestNameIsBrowser(t *testing.T) {
	h := New(testVersion(), nil)
	if h.Name() != "Browser" {
		t.Fatalf("expected Browser, got %q", h.Name())
	}
}
