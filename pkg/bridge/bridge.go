// Package bridge defines BrowserBridge, the DOM/CSS domains' sole view of
// a document tree. Concrete bridges in this repo are mocks — a real
// browser integration is explicitly out of scope (spec.md §1 Non-goals).
// Grounded on the original Rust dom_domain/src/mock_dom.rs.
package bridge

// NodeType mirrors the DOM Level 1 node-type constants CDP uses.
type NodeType int

const (
	NodeTypeElement               NodeType = 1
	NodeTypeAttribute             NodeType = 2
	NodeTypeText                  NodeType = 3
	NodeTypeCData                 NodeType = 4
	NodeTypeEntityReference       NodeType = 5
	NodeTypeEntity                NodeType = 6
	NodeTypeProcessingInstruction NodeType = 7
	NodeTypeComment               NodeType = 8
	NodeTypeDocument              NodeType = 9
	NodeTypeDocumentType          NodeType = 10
	NodeTypeDocumentFragment      NodeType = 11
	NodeTypeNotation              NodeType = 12
)

// Node is one node in the bridge's document tree. Attributes is an
// ordered list of alternating (name, value) pairs, matching CDP's wire
// shape directly.
type Node struct {
	NodeID         uint32
	NodeType       NodeType
	NodeName       string
	LocalName      string
	Attributes     []string
	ChildNodeCount int
	Children       []uint32
	ParentID       uint32
}

// CSSProperty is one computed style property.
type CSSProperty struct {
	Name      string
	Value     string
	Important bool
}

// Quad is eight floats describing a quadrilateral's four (x,y) corners,
// matching CDP's content/padding/border/margin box representation.
type Quad [8]float64

// BoxModel is the result of CSS.getBoxModel.
type BoxModel struct {
	Content Quad
	Padding Quad
	Border  Quad
	Margin  Quad
	Width   float64
	Height  float64
}

// BrowserBridge is implemented by anything that can answer DOM/CSS
// domain queries against a document tree. The tree is flat — a
// node_id→Node table, not a pointer graph — per spec.md §9's design note
// that a cyclic native graph has no safe Go representation without it.
type BrowserBridge interface {
	// GetDocument returns the tree's root node (node_id=1, Document).
	GetDocument() Node

	// GetNode looks up a node by id.
	GetNode(nodeID uint32) (Node, bool)

	// QuerySelector evaluates selector starting at nodeID, returning the
	// first matching descendant's id. ok is false when nothing matches;
	// callers distinguish "selector didn't match" from "nodeID itself
	// doesn't exist" by calling GetNode first.
	QuerySelector(nodeID uint32, selector string) (matched uint32, ok bool)

	// SetAttribute sets (or replaces) one attribute on an Element node.
	SetAttribute(nodeID uint32, name, value string) error

	// RemoveNode deletes a node and its subtree from the tree.
	RemoveNode(nodeID uint32) error

	// ComputedStyle returns the node's computed style properties.
	ComputedStyle(nodeID uint32) []CSSProperty

	// BoxModel returns the node's layout box.
	BoxModel(nodeID uint32) BoxModel
}
