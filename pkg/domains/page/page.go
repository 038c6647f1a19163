// Package page implements the CDP Page domain: enable/disable, navigate,
// a placeholder screenshot, and frame-tree reflection (spec.md §4.10).
package page

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// placeholderScreenshot is a minimal 1x1 transparent PNG, base64-encoded.
// captureScreenshot is explicitly a constant placeholder per spec.md §4.10
// since there is no real renderer behind this server.
const placeholderScreenshot = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNk+A8AAQUBAScY42YAAAAASUVORK5CYII="

// Handler implements the Page domain.
type Handler struct {
	mu       sync.Mutex
	enabled  bool
	url      string
	frameID  string
	loaderID string
	navSeq   uint64
}

// New creates a Page handler with a blank initial document.
func New() *Handler {
	return &Handler{
		url:      "about:blank",
		frameID:  "frame-0",
		loaderID: "loader-0",
	}
}

func (h *Handler) Name() string { return "Page" }

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

	case "navigate":
		var p struct {
			URL string `json:"url"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.URL == "" {
			return nil, cdpmsg.InvalidParams("url is required")
		}
		h.mu.Lock()
		h.navSeq++
		h.url = p.URL
		h.frameID = "frame-0"
		h.loaderID = idFor("loader", h.navSeq)
		result := map[string]string{"frameId": h.frameID, "loaderId": h.loaderID}
		h.mu.Unlock()
		return result, nil

	case "captureScreenshot":
		return map[string]string{"data": placeholderScreenshot}, nil

	case "getFrameTree":
		h.mu.Lock()
		tree := map[string]any{
			"frame": map[string]string{
				"id":  h.frameID,
				"url": h.url,
			},
		}
		h.mu.Unlock()
		return tree, nil

	default:
		return nil, cdpmsg.MethodNotFound("Page." + method)
	}
}

func idFor(prefix string, seq uint64) string {
	return prefix + "-" + strconv.FormatUint(seq, 10)
}
