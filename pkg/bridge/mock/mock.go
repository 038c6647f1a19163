// Package mock implements a fixed, in-memory bridge.BrowserBridge,
// standing in for a real browser's document tree. Grounded on the
// original Rust dom_domain/src/mock_dom.rs's MockDomBridge.
package mock

import (
	"fmt"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge"
)

// Bridge is a fixed document tree: #document → html → body → div#test-div.
type Bridge struct {
	mu    sync.RWMutex
	nodes map[uint32]bridge.Node
}

// New builds a Bridge seeded with the standard test document.
func New() *Bridge {
	b := &Bridge{nodes: make(map[uint32]bridge.Node)}
	b.nodes[1] = bridge.Node{NodeID: 1, NodeType: bridge.NodeTypeDocument, NodeName: "#document", ChildNodeCount: 1, Children: []uint32{2}}
	b.nodes[2] = bridge.Node{NodeID: 2, NodeType: bridge.NodeTypeElement, NodeName: "HTML", LocalName: "html", Attributes: []string{}, ChildNodeCount: 1, Children: []uint32{3}, ParentID: 1}
	b.nodes[3] = bridge.Node{NodeID: 3, NodeType: bridge.NodeTypeElement, NodeName: "BODY", LocalName: "body", Attributes: []string{}, ChildNodeCount: 1, Children: []uint32{4}, ParentID: 2}
	b.nodes[4] = bridge.Node{NodeID: 4, NodeType: bridge.NodeTypeElement, NodeName: "DIV", LocalName: "div", Attributes: []string{"id", "test-div"}, ChildNodeCount: 0, ParentID: 3}
	return b
}

func (b *Bridge) GetDocument() bridge.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.nodes[1]
}

func (b *Bridge) GetNode(nodeID uint32) (bridge.Node, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.nodes[nodeID]
	return n, ok
}

// QuerySelector is a deliberately simplified matcher, mirroring the
// original mock: it recognizes a handful of fixed selectors against the
// standard test document regardless of the starting nodeID.
func (b *Bridge) QuerySelector(nodeID uint32, selector string) (uint32, bool) {
	switch selector {
	case "div", "#test-div":
		return 4, true
	case "body":
		return 3, true
	case "html":
		return 2, true
	default:
		return 0, false
	}
}

func (b *Bridge) SetAttribute(nodeID uint32, name, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %d not found", nodeID)
	}
	if n.NodeType != bridge.NodeTypeElement {
		return fmt.Errorf("cannot set attribute on non-element node %d", nodeID)
	}
	for i := 0; i < len(n.Attributes); i += 2 {
		if n.Attributes[i] == name {
			n.Attributes[i+1] = value
			b.nodes[nodeID] = n
			return nil
		}
	}
	n.Attributes = append(n.Attributes, name, value)
	b.nodes[nodeID] = n
	return nil
}

func (b *Bridge) RemoveNode(nodeID uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	n, ok := b.nodes[nodeID]
	if !ok {
		return fmt.Errorf("node %d not found", nodeID)
	}
	b.removeSubtreeLocked(nodeID)
	if parent, ok := b.nodes[n.ParentID]; ok {
		parent.Children = removeID(parent.Children, nodeID)
		parent.ChildNodeCount = len(parent.Children)
		b.nodes[n.ParentID] = parent
	}
	return nil
}

// removeSubtreeLocked must be called with b.mu held.
func (b *Bridge) removeSubtreeLocked(nodeID uint32) {
	n, ok := b.nodes[nodeID]
	if !ok {
		return
	}
	for _, child := range n.Children {
		b.removeSubtreeLocked(child)
	}
	delete(b.nodes, nodeID)
}

func removeID(ids []uint32, target uint32) []uint32 {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// ComputedStyle returns the same fixed style set for every node, mirroring
// the original mock bridge's get_computed_styles.
func (b *Bridge) ComputedStyle(nodeID uint32) []bridge.CSSProperty {
	return []bridge.CSSProperty{
		{Name: "display", Value: "block"},
		{Name: "color", Value: "rgb(0, 0, 0)"},
	}
}

// BoxModel derives a deterministic layout box from nodeID: width and
// height grow with the id so each node in the fixture has a distinct,
// reproducible box (there is no real layout engine behind this bridge).
func (b *Bridge) BoxModel(nodeID uint32) bridge.BoxModel {
	width := 100.0 + float64(nodeID)*10.0
	height := 20.0 + float64(nodeID)*5.0
	rect := func(w, h float64) bridge.Quad {
		return bridge.Quad{0, 0, w, 0, w, h, 0, h}
	}
	return bridge.BoxModel{
		Content: rect(width, height),
		Padding: rect(width+4, height+4),
		Border:  rect(width+8, height+8),
		Margin:  rect(width+16, height+16),
		Width:   width,
		Height:  height,
	}
}
