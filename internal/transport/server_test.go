package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/cdpsession"
)

type echoHandler struct{}

func (echoHandler) HandleMessage(sess *cdpsession.Session, raw []byte) {
	sess.Enqueue(string(raw))
}

func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	manager := cdpsession.NewManager(nil)
	srv := New(cfg, manager, echoHandler{}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AllowedOrigins = []string{"http://localhost:*"}
	return cfg
}

func TestJSONVersionEndpoint(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/json/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestJSONListEndpointStartsEmpty(t *testing.T) {
	_, ts := newTestServer(t, testConfig())

	resp, err := http.Get(ts.URL + "/json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRemoteDebuggingDisabledRefusesAll(t *testing.T) {
	cfg := testConfig()
	cfg.EnableRemoteDebugging = false
	_, ts := newTestServer(t, cfg)

	resp, err := http.Get(ts.URL + "/json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.StatusCode)
	}
}

func TestWebSocketUpgradeAndEcho(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/devtools/page/anything"

	header := http.Header{}
	header.Set("Origin", "http://localhost:1234")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	msg := `{"id":1,"method":"Browser.getVersion"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, reply, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(reply) != msg {
		t.Fatalf("expected echo of %q, got %q", msg, reply)
	}
}

func TestWebSocketUpgradeRejectsDisallowedOrigin(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/devtools/page/anything"

	header := http.Header{}
	header.Set("Origin", "http://evil.example.com")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("expected dial to fail for a disallowed origin")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestWebSocketUpgradeRejectsAbsentOrigin(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/devtools/page/anything"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail for an absent origin")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestWebSocketUpgradeRejectsMalformedOrigin(t *testing.T) {
	_, ts := newTestServer(t, testConfig())
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/devtools/page/anything"

	header := http.Header{}
	header.Set("Origin", "not-a-valid-origin")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("expected dial to fail for a malformed origin")
	}
	if resp != nil && resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSessionRegisteredAndRemovedOnDisconnect(t *testing.T) {
	manager := cdpsession.NewManager(nil)
	srv := New(testConfig(), manager, echoHandler{}, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/devtools/page/anything"
	header := http.Header{}
	header.Set("Origin", "http://localhost:1234")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for manager.Count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if manager.Count() != 1 {
		t.Fatalf("expected 1 registered session, got %d", manager.Count())
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for manager.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if manager.Count() != 0 {
		t.Fatalf("expected session to be removed after disconnect, got %d", manager.Count())
	}
}
