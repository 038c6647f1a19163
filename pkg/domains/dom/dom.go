// Package dom implements the CDP DOM domain: document-tree queries and
// mutations backed by a bridge.BrowserBridge, with a per-subscriber
// bounded mutation stream (spec.md §4.8, SPEC_FULL.md §6.3).
package dom

import (
	"encoding/json"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// MutationRecord describes one tree mutation, published to every current
// subscriber before the triggering Handle call returns.
type MutationRecord struct {
	Type         string `json:"type"`
	NodeID       uint32 `json:"nodeId"`
	Name         string `json:"name,omitempty"`
	Value        string `json:"value,omitempty"`
	ParentNodeID uint32 `json:"parentNodeId,omitempty"`
}

// HighlightConfig mirrors CDP's DOM.HighlightConfig.
type HighlightConfig struct {
	ShowInfo              bool  `json:"showInfo,omitempty"`
	ShowRulers            bool  `json:"showRulers,omitempty"`
	ShowAccessibilityInfo bool  `json:"showAccessibilityInfo,omitempty"`
	ShowExtensionLines    bool  `json:"showExtensionLines,omitempty"`
	ContentColor          *RGBA `json:"contentColor,omitempty"`
	PaddingColor          *RGBA `json:"paddingColor,omitempty"`
	BorderColor           *RGBA `json:"borderColor,omitempty"`
	MarginColor           *RGBA `json:"marginColor,omitempty"`
}

// RGBA is an 8-bit-per-channel color with a floating-point alpha.
type RGBA struct {
	R int     `json:"r"`
	G int     `json:"g"`
	B int     `json:"b"`
	A float64 `json:"a,omitempty"`
}

// EventEmitter publishes non-mutation domain events (highlight
// requests). A nil emitter is a no-op.
type EventEmitter interface {
	Emit(domain string, ev *cdpmsg.Event)
}

type noopEmitter struct{}

func (noopEmitter) Emit(string, *cdpmsg.Event) {}

const mutationBufferSize = 64

// Handler implements the DOM domain.
type Handler struct {
	mu      sync.Mutex
	bridge  bridge.BrowserBridge
	emitter EventEmitter

	highlights map[uint32]HighlightConfig

	nextSubID   int
	subscribers map[int]chan MutationRecord
}

// New creates a DOM handler over the given bridge. emitter may be nil.
func New(b bridge.BrowserBridge, emitter EventEmitter) *Handler {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Handler{
		bridge:      b,
		emitter:     emitter,
		highlights:  make(map[uint32]HighlightConfig),
		subscribers: make(map[int]chan MutationRecord),
	}
}

func (h *Handler) Name() string { return "DOM" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "getDocument":
		return map[string]bridge.Node{"root": h.bridge.GetDocument()}, nil

	case "querySelector":
		var p struct {
			NodeID   uint32 `json:"nodeId"`
			Selector string `json:"selector"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if _, ok := h.bridge.GetNode(p.NodeID); !ok {
			return nil, cdpmsg.NodeNotFound(p.NodeID)
		}
		matched, ok := h.bridge.QuerySelector(p.NodeID, p.Selector)
		if !ok {
			return map[string]any{"nodeId": nil}, nil
		}
		return map[string]any{"nodeId": matched}, nil

	case "setAttributeValue":
		var p struct {
			NodeID uint32 `json:"nodeId"`
			Name   string `json:"name"`
			Value  string `json:"value"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if err := h.bridge.SetAttribute(p.NodeID, p.Name, p.Value); err != nil {
			return nil, cdpmsg.ServerError(cdpmsg.ServerErrorMin, err.Error())
		}
		h.publish(MutationRecord{Type: "AttributeModified", NodeID: p.NodeID, Name: p.Name, Value: p.Value})
		return struct{}{}, nil

	case "removeNode":
		var p struct {
			NodeID uint32 `json:"nodeId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.NodeID == 1 {
			return nil, cdpmsg.InvalidParams("cannot remove the document root")
		}
		node, ok := h.bridge.GetNode(p.NodeID)
		if !ok {
			return nil, cdpmsg.NodeNotFound(p.NodeID)
		}
		if err := h.bridge.RemoveNode(p.NodeID); err != nil {
			return nil, cdpmsg.NodeNotFound(p.NodeID)
		}
		h.publish(MutationRecord{Type: "ChildListRemoved", NodeID: p.NodeID, ParentNodeID: node.ParentID})
		return struct{}{}, nil

	case "highlightNode":
		var p struct {
			HighlightConfig HighlightConfig `json:"highlightConfig"`
			NodeID          uint32          `json:"nodeId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if _, ok := h.bridge.GetNode(p.NodeID); !ok {
			return nil, cdpmsg.NodeNotFound(p.NodeID)
		}
		h.mu.Lock()
		h.highlights[p.NodeID] = p.HighlightConfig
		h.mu.Unlock()
		h.emitter.Emit("Overlay", &cdpmsg.Event{Method: "Overlay.nodeHighlightRequested", Params: map[string]uint32{"nodeId": p.NodeID}})
		return struct{}{}, nil

	case "hideHighlight":
		h.mu.Lock()
		h.highlights = make(map[uint32]HighlightConfig)
		h.mu.Unlock()
		return struct{}{}, nil

	default:
		return nil, cdpmsg.MethodNotFound("DOM." + method)
	}
}

// Subscribe registers a new mutation-record subscriber with a bounded
// buffer. Call Unsubscribe with the returned id when done.
func (h *Handler) Subscribe() (int, <-chan MutationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSubID
	h.nextSubID++
	ch := make(chan MutationRecord, mutationBufferSize)
	h.subscribers[id] = ch
	return id, ch
}

// Unsubscribe removes and closes a subscriber's channel.
func (h *Handler) Unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		close(ch)
		delete(h.subscribers, id)
	}
}

// HighlightedNodes returns the node ids currently highlighted.
func (h *Handler) HighlightedNodes() []uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]uint32, 0, len(h.highlights))
	for id := range h.highlights {
		ids = append(ids, id)
	}
	return ids
}

// publish sends rec to every current subscriber without blocking. A
// subscriber whose buffer is full has fallen behind and is dropped
// entirely, matching spec.md §5's "slow consumers are dropped, not
// back-pressured onto producers".
func (h *Handler) publish(rec MutationRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- rec:
		default:
			close(ch)
			delete(h.subscribers, id)
		}
	}
}
