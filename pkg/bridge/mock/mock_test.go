package mock

import (
	"testing"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge"
)

func TestGetDocumentIsRootElement(t *testing.T) {
	b := New()
	doc := b.GetDocument()
	if doc.NodeID != 1 || doc.NodeType != bridge.NodeTypeDocument || doc.NodeName != "#document" {
		t.Fatalf("unexpected document node: %+v", doc)
	}
}

func TestGetNode(t *testing.T) {
	b := New()
	n, ok := b.GetNode(4)
	if !ok || n.NodeName != "DIV" || n.NodeType != bridge.NodeTypeElement {
		t.Fatalf("unexpected node: %+v ok=%v", n, ok)
	}
	if _, ok := b.GetNode(999); ok {
		t.Fatal("expected unknown node id to be absent")
	}
}

func TestQuerySelector(t *testing.T) {
	b := New()
	cases := []struct {
		selector string
		want     uint32
		wantOK   bool
	}{
		{"div", 4, true},
		{"#test-div", 4, true},
		{"body", 3, true},
		{"html", 2, true},
		{".nonexistent", 0, false},
	}
	for _, c := range cases {
		got, ok := b.QuerySelector(1, c.selector)
		if got != c.want || ok != c.wantOK {
			t.Fatalf("QuerySelector(%q) = (%d, %v), want (%d, %v)", c.selector, got, ok, c.want, c.wantOK)
		}
	}
}

func TestSetAttributeAddsAndReplaces(t *testing.T) {
	b := New()
	if err := b.SetAttribute(4, "class", "test-class"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, _ := b.GetNode(4)
	if !containsPair(n.Attributes, "class", "test-class") {
		t.Fatalf("expected class attribute to be added, got %v", n.Attributes)
	}

	if err := b.SetAttribute(4, "class", "other-class"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, _ = b.GetNode(4)
	if !containsPair(n.Attributes, "class", "other-class") {
		t.Fatalf("expected class attribute to be replaced, got %v", n.Attributes)
	}
}

func TestSetAttributeRejectsNonElement(t *testing.T) {
	b := New()
	if err := b.SetAttribute(1, "x", "y"); err == nil {
		t.Fatal("expected error setting an attribute on the document node")
	}
}

func TestSetAttributeUnknownNode(t *testing.T) {
	b := New()
	if err := b.SetAttribute(999, "x", "y"); err == nil {
		t.Fatal("expected error for an unknown node id")
	}
}

func TestRemoveNodeDetachesFromParent(t *testing.T) {
	b := New()
	if err := b.RemoveNode(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := b.GetNode(4); ok {
		t.Fatal("expected node 4 to be gone")
	}
	body, _ := b.GetNode(3)
	for _, c := range body.Children {
		if c == 4 {
			t.Fatal("expected parent's children list to no longer reference the removed node")
		}
	}
}

func TestRemoveNodeUnknown(t *testing.T) {
	b := New()
	if err := b.RemoveNode(999); err == nil {
		t.Fatal("expected error removing an unknown node")
	}
}

func TestBoxModelIsDeterministicPerNode(t *testing.T) {
	b := New()
	box4a := b.BoxModel(4)
	box4b := b.BoxModel(4)
	box3 := b.BoxModel(3)
	if box4a != box4b {
		t.Fatal("expected the box model for a given node id to be deterministic")
	}
	if box4a.Width == box3.Width {
		t.Fatal("expected different node ids to yield different box dimensions")
	}
}

func containsPair(attrs []string, name, value string) bool {
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == name && attrs[i+1] == value {
			return true
		}
	}
	return false
}
