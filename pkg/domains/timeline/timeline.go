// Package timeline implements the CDP Timeline domain: recording of
// frame-timing and memory-snapshot entries tagged by category, bracketed
// by start/stop (spec.md §4.10).
package timeline

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// Entry is one recorded timeline datum.
type Entry struct {
	Category  string  `json:"category"`
	Name      string  `json:"name"`
	Timestamp float64 `json:"timestamp"`
	Data      any     `json:"data,omitempty"`
}

// Handler implements the Timeline domain.
type Handler struct {
	mu        sync.Mutex
	recording bool
	entries   []Entry
	startedAt time.Time
}

// New creates a Timeline handler.
func New() *Handler {
	return &Handler{}
}

func (h *Handler) Name() string { return "Timeline" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "start":
		h.mu.Lock()
		h.recording = true
		h.entries = nil
		h.startedAt = time.Now()
		h.mu.Unlock()
		return struct{}{}, nil

	case "stop":
		h.mu.Lock()
		if !h.recording {
			h.mu.Unlock()
			return nil, cdpmsg.ServerError(cdpmsg.ServerErrorMin, "Timeline.stop called while not recording")
		}
		h.recording = false
		entries := append([]Entry(nil), h.entries...)
		h.mu.Unlock()
		return map[string][]Entry{"entries": entries}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Timeline." + method)
	}
}

// Record appends entry if recording is active; otherwise it is dropped.
// Call this from a BrowserBridge-driven simulation (frame timing, memory
// snapshots) — there is no wire method to push an entry directly.
func (h *Handler) Record(category, name string, data any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.recording {
		return
	}
	h.entries = append(h.entries, Entry{
		Category:  category,
		Name:      name,
		Timestamp: time.Since(h.startedAt).Seconds(),
		Data:      data,
	})
}

// IsRecording reports whether Timeline.start has been called without a
// matching Timeline.stop.
func (h *Handler) IsRecording() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.recording
}
