// Package network implements the CDP Network domain: a concurrent request
// ledger (spec.md §4.7) plus wire-level gating, interception patterns, and
// a cookie-jar passthrough to the Storage domain (SPEC_FULL.md §6.4).
package network

import (
	"encoding/json"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/transport"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// RequestRecord is one tracked HTTP request.
type RequestRecord struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Method string `json:"method"`
}

type responseBody struct {
	body      string
	base64    bool
	truncated bool
}

// InterceptionPattern matches Network.setRequestInterception's patterns.
type InterceptionPattern struct {
	URLPattern        string `json:"urlPattern"`
	ResourceType      string `json:"resourceType,omitempty"`
	InterceptionStage string `json:"interceptionStage,omitempty"`
}

// CookieJar is the narrow surface Network needs from the Storage domain's
// cookie jar, satisfied by *storage.Handler without either package
// importing the other's concrete type.
type CookieJar interface {
	Handle(method string, params json.RawMessage) (any, *cdpmsg.Error)
}

// Handler implements the Network domain.
type Handler struct {
	mu sync.RWMutex

	enabled bool

	requests map[string]RequestRecord
	bodies   map[string]responseBody
	postData map[string]string

	maxResponseBodySize int
	maxRequestBodySize  int
	interceptPatterns   []InterceptionPattern

	cookies CookieJar
}

// New creates a Network handler. maxResponseBodySize bounds how much of a
// stored response body is kept, and maxRequestBodySize bounds how much of
// an outbound request body is kept (spec.md §4.7, SPEC_FULL.md §6
// max_request_body_size); cookies may be nil, in which case
// getAllCookies/setCookie return InternalError.
func New(maxResponseBodySize, maxRequestBodySize int, cookies CookieJar) *Handler {
	return &Handler{
		requests:            make(map[string]RequestRecord),
		bodies:              make(map[string]responseBody),
		postData:            make(map[string]string),
		maxResponseBodySize: maxResponseBodySize,
		maxRequestBodySize:  maxRequestBodySize,
		cookies:             cookies,
	}
}

func (h *Handler) Name() string { return "Network" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "enable":
		h.mu.Lock()
		h.enabled = true
		h.mu.Unlock()
		return struct{}{}, nil

	case "disable":
		h.mu.Lock()
		h.enabled = false
		h.mu.Unlock()
		return struct{}{}, nil

	case "getResponseBody":
		var p struct {
			RequestID string `json:"requestId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.RLock()
		b, ok := h.bodies[p.RequestID]
		h.mu.RUnlock()
		if !ok {
			return nil, cdpmsg.ObjectNotFound(p.RequestID)
		}
		return map[string]any{"body": b.body, "base64Encoded": b.base64}, nil

	case "getRequestPostData":
		var p struct {
			RequestID string `json:"requestId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.RLock()
		data, ok := h.postData[p.RequestID]
		h.mu.RUnlock()
		if !ok {
			return nil, cdpmsg.ObjectNotFound(p.RequestID)
		}
		return map[string]string{"postData": data}, nil

	case "setRequestInterception":
		var p struct {
			Patterns []InterceptionPattern `json:"patterns"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.Lock()
		h.interceptPatterns = p.Patterns
		h.mu.Unlock()
		return struct{}{}, nil

	case "getAllCookies":
		if h.cookies == nil {
			return nil, cdpmsg.InternalError("no cookie jar wired")
		}
		return h.cookies.Handle("getCookies", nil)

	case "setCookie":
		if h.cookies == nil {
			return nil, cdpmsg.InternalError("no cookie jar wired")
		}
		return h.cookies.Handle("setCookie", params)

	default:
		return nil, cdpmsg.MethodNotFound("Network." + method)
	}
}

// TrackRequest inserts (or replaces) a RequestRecord. A silent no-op while
// the domain is disabled, matching the enable/disable gating idiom shared
// by the other domains.
func (h *Handler) TrackRequest(id, url, method string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.enabled {
		return
	}
	h.requests[id] = RequestRecord{ID: id, URL: url, Method: method}
}

// GetRequest returns the tracked record for id, if any.
func (h *Handler) GetRequest(id string) (RequestRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.requests[id]
	return r, ok
}

// StoreResponseBody records body for id, truncating to
// maxResponseBodySize and flagging truncation when it was too large.
func (h *Handler) StoreResponseBody(id, body string, isBase64 bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	truncated := false
	if h.maxResponseBodySize > 0 && len(body) > h.maxResponseBodySize {
		body = body[:h.maxResponseBodySize]
		truncated = true
	}
	h.bodies[id] = responseBody{body: body, base64: isBase64, truncated: truncated}
}

// SetRequestPostData records the outbound request body for id, truncating
// to maxRequestBodySize, available later via Network.getRequestPostData.
func (h *Handler) SetRequestPostData(id, data string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.maxRequestBodySize > 0 && len(data) > h.maxRequestBodySize {
		data = data[:h.maxRequestBodySize]
	}
	h.postData[id] = data
}

// IsInterceptionEnabled reports whether any interception pattern is
// currently registered.
func (h *Handler) IsInterceptionEnabled() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.interceptPatterns) > 0
}

// MatchesInterception reports whether url matches any registered
// interception pattern, using the same glob-suffix rule as the origin
// allow-list.
func (h *Handler) MatchesInterception(url string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.interceptPatterns) == 0 {
		return false
	}
	patterns := make([]string, 0, len(h.interceptPatterns))
	for _, p := range h.interceptPatterns {
		patterns = append(patterns, p.URLPattern)
	}
	return transport.OriginAllowed(url, patterns)
}
