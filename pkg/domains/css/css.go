// Package css implements the CDP CSS domain: computed styles and box
// model queries backed by a bridge.BrowserBridge (spec.md §4.8,
// SPEC_FULL.md §6.3).
package css

import (
	"encoding/json"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// Handler implements the CSS domain.
type Handler struct {
	bridge bridge.BrowserBridge
}

// New creates a CSS handler over the given bridge.
func New(b bridge.BrowserBridge) *Handler {
	return &Handler{bridge: b}
}

func (h *Handler) Name() string { return "CSS" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "getComputedStyleForNode":
		var p struct {
			NodeID uint32 `json:"nodeId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if _, ok := h.bridge.GetNode(p.NodeID); !ok {
			return nil, cdpmsg.NodeNotFound(p.NodeID)
		}
		return map[string][]bridge.CSSProperty{"computedStyle": h.bridge.ComputedStyle(p.NodeID)}, nil

	case "getBoxModel":
		var p struct {
			NodeID uint32 `json:"nodeId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if _, ok := h.bridge.GetNode(p.NodeID); !ok {
			return nil, cdpmsg.NodeNotFound(p.NodeID)
		}
		return map[string]bridge.BoxModel{"model": h.bridge.BoxModel(p.NodeID)}, nil

	default:
		return nil, cdpmsg.MethodNotFound("CSS." + method)
	}
}
