// Package console implements the CDP Console domain: an append-only
// message log with enable/getMessages/clearMessages and a messageAdded
// event on append (spec.md §4.10).
package console

import (
	"encoding/json"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// Message is one console entry.
type Message struct {
	Source string `json:"source"`
	Level  string `json:"level"`
	Text   string `json:"text"`
	URL    string `json:"url,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// EventEmitter mirrors security.EventEmitter; each domain package defines
// its own copy to avoid a shared dependency edge between domain packages.
type EventEmitter interface {
	Emit(domain string, ev *cdpmsg.Event)
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, *cdpmsg.Event) {}

// Handler implements the Console domain.
type Handler struct {
	mu       sync.Mutex
	enabled  bool
	messages []Message
	emitter  EventEmitter
}

// New creates a Console handler with an empty log.
func New(emitter EventEmitter) *Handler {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Handler{emitter: emitter}
}

func (h *Handler) Name() string { return "Console" }

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

	case "getMessages":
		h.mu.Lock()
		messages := append([]Message(nil), h.messages...)
		h.mu.Unlock()
		return map[string][]Message{"messages": messages}, nil

	case "clearMessages":
		h.mu.Lock()
		h.messages = nil
		h.mu.Unlock()
		return struct{}{}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Console." + method)
	}
}

// Append records msg and, if the domain is enabled, emits
// Console.messageAdded. Call this from a BrowserBridge-driven simulation
// or test harness; there is no wire method to append a message directly,
// matching the real CDP domain (messages originate from the engine).
func (h *Handler) Append(msg Message) {
	h.mu.Lock()
	h.messages = append(h.messages, msg)
	enabled := h.enabled
	h.mu.Unlock()

	if enabled {
		h.emitter.Emit("Console", &cdpmsg.Event{
			Method: "Console.messageAdded",
			Params: map[string]any{"message": msg},
		})
	}
}
