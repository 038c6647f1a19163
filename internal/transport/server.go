package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/cdpsession"
)

// MessageHandler processes one inbound raw WebSocket frame for sess. It is
// expected to enqueue any response/event payloads onto sess itself (via
// sess.Enqueue); the transport's writer pump is responsible only for frame
// I/O, never for protocol semantics. Implemented by internal/dispatch.
type MessageHandler interface {
	HandleMessage(sess *cdpsession.Session, raw []byte)
}

// SessionCloseHandler is an optional extension a MessageHandler may also
// implement to be notified when a session's connection tears down, so it
// can flush any per-session state it owns (e.g. the event batcher's
// pending coalesced batches, spec.md §4.4). Checked with a type assertion
// rather than folded into MessageHandler so handlers with nothing to
// flush don't need a no-op method.
type SessionCloseHandler interface {
	HandleSessionClose(sess *cdpsession.Session)
}

// TargetInfo describes one debuggable target for the /json discovery
// surface, mirroring the shape Chrome's own remote-debugging endpoint
// returns.
type TargetInfo struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

// Server is the CDP WebSocket listener. Grounded on vango's pkg/server
// (Server struct, upgrader field, ServeHTTP dispatch-by-path, graceful
// Shutdown) generalized from vango's own wire protocol to the CDP
// JSON-RPC-over-WebSocket transport described in the original Rust
// transport.rs.
type Server struct {
	config   Config
	manager  *cdpsession.Manager
	handler  MessageHandler
	upgrader websocket.Upgrader
	logger   *slog.Logger

	httpServer *http.Server
}

// New creates a Server. manager tracks connected sessions; handler
// processes decoded frames.
func New(cfg Config, manager *cdpsession.Manager, handler MessageHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	for _, warning := range cfg.Validate() {
		logger.Warn("transport config warning", "warning", warning)
	}

	return &Server{
		config:  cfg,
		manager: manager,
		handler: handler,
		logger:  logger.With("component", "transport"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin is validated explicitly in validateOrigin before
			// Upgrade is ever called, so that absent/disallowed origins
			// and malformed ones can get distinct status codes (403 vs
			// 400) — gorilla's CheckOrigin hook can only report
			// pass/fail and always answers failure with a blanket 403.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns an http.Handler serving the discovery and upgrade
// surface, for embedding in an external mux or for use with
// httptest.NewServer in tests.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

// Addr returns the address the server is bound to, valid only after Start.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Start binds the listener and serves in a background goroutine. It
// returns once the listener is bound (so the caller can read the
// resolved address), not once serving stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.BindAddress, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("transport: listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Addr:              listener.Addr().String(),
		Handler:           http.HandlerFunc(s.serveHTTP),
		ReadHeaderTimeout: s.config.HandshakeTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("serve error", "error", err)
		}
	}()

	s.logger.Info("listening", "addr", listener.Addr().String(), "remote_debugging_enabled", s.config.EnableRemoteDebugging)
	return nil
}

// Stop gracefully drains in-flight connections and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.manager.Each(func(sess *cdpsession.Session) { sess.Close() })

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("transport: shutdown: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if !s.config.EnableRemoteDebugging {
		http.Error(w, "remote debugging disabled", http.StatusServiceUnavailable)
		return
	}

	switch {
	case r.URL.Path == "/json" || r.URL.Path == "/json/list":
		s.serveJSONList(w, r)
	case r.URL.Path == "/json/version":
		s.serveJSONVersion(w, r)
	case strings.HasPrefix(r.URL.Path, "/devtools/page/"):
		s.handleUpgrade(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveJSONVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"Browser":          "Corten-DevTools/" + s.config.ProtocolVersion,
		"Protocol-Version": s.config.ProtocolVersion,
	})
}

func (s *Server) serveJSONList(w http.ResponseWriter, r *http.Request) {
	targets := make([]TargetInfo, 0)
	s.manager.Each(func(sess *cdpsession.Session) {
		id := sess.ID().String()
		targets = append(targets, TargetInfo{
			ID:                   id,
			Type:                 "page",
			Title:                "",
			URL:                  "about:blank",
			WebSocketDebuggerURL: fmt.Sprintf("ws://%s/devtools/page/%s", r.Host, id),
		})
	})
	writeJSON(w, targets)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if !s.validateOrigin(w, r) {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade failed", "error", err)
		return
	}

	conn.SetReadLimit(s.config.MaxMessageSize)
	sess := s.manager.Create()

	go s.writePump(conn, sess)
	s.readPump(conn, sess)
}

// validateOrigin enforces spec.md §4.1's pre-upgrade origin policy: an
// absent or non-matching Origin header is HTTP 403, a malformed one is
// HTTP 400. Grounded on the original Rust transport.rs validate_origin.
func (s *Server) validateOrigin(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		http.Error(w, "origin header required", http.StatusForbidden)
		return false
	}

	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		http.Error(w, "malformed origin header", http.StatusBadRequest)
		return false
	}

	if !OriginAllowed(origin, s.config.AllowedOrigins) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return false
	}
	return true
}

// readPump owns the connection's read side. It blocks the calling
// goroutine until the client disconnects, a protocol violation closes the
// connection, or the session is closed from elsewhere.
func (s *Server) readPump(conn *websocket.Conn, sess *cdpsession.Session) {
	defer func() {
		s.manager.Remove(sess.ID())
		if h, ok := s.handler.(SessionCloseHandler); ok {
			h.HandleSessionClose(sess)
		}
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		return nil
	})

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				sess.Logger().Error("read error", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			// CDP is a text-JSON protocol; binary frames are ignored
			// rather than tearing down the connection.
			continue
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		s.handler.HandleMessage(sess, raw)
	}
}

// writePump owns the connection's write side: it drains sess's outbound
// queue whenever Notify fires and sends a periodic ping to detect dead
// peers, exiting once the session closes.
func (s *Server) writePump(conn *websocket.Conn, sess *cdpsession.Session) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sess.Notify():
			for _, payload := range sess.Drain() {
				conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
					sess.Logger().Error("write error", "error", err)
					sess.Close()
					return
				}
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.Close()
				return
			}

		case <-sess.Done():
			// Close() has already discarded any unflushed outbound items
			// (spec.md §4.1); just send the WebSocket close frame.
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
