package dom

import (
	"testing"
	"time"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge/mock"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

func TestGetDocument(t *testing.T) {
	h := New(mock.New(), nil)
	result, err := h.Handle("getDocument", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	root := result.(map[string]bridge.Node)["root"]
	if root.NodeID != 1 || root.NodeType != bridge.NodeTypeDocument {
		t.Fatalf("unexpected root node: %+v", root)
	}
}

func TestQuerySelectorFound(t *testing.T) {
	h := New(mock.New(), nil)
	result, err := h.Handle("querySelector", []byte(`{"nodeId":1,"selector":"div"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(map[string]any)["nodeId"] != uint32(4) {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestQuerySelectorNotFound(t *testing.T) {
	h := New(mock.New(), nil)
	result, err := h.Handle("querySelector", []byte(`{"nodeId":1,"selector":".nope"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.(map[string]any)["nodeId"] != nil {
		t.Fatalf("expected null nodeId, got %+v", result)
	}
}

func TestQuerySelectorMissingStartNode(t *testing.T) {
	h := New(mock.New(), nil)
	_, err := h.Handle("querySelector", []byte(`{"nodeId":999,"selector":"div"}`))
	if err == nil {
		t.Fatal("expected error for a missing starting node")
	}
}

func TestSetAttributeValuePublishesMutation(t *testing.T) {
	h := New(mock.New(), nil)
	_, ch := h.Subscribe()

	_, err := h.Handle("setAttributeValue", []byte(`{"nodeId":4,"name":"class","value":"c"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case rec := <-ch:
		if rec.Type != "AttributeModified" || rec.NodeID != 4 || rec.Name != "class" || rec.Value != "c" {
			t.Fatalf("unexpected mutation record: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a mutation record to be published")
	}
}

func TestSetAttributeValueOnNonElement(t *testing.T) {
	h := New(mock.New(), nil)
	_, err := h.Handle("setAttributeValue", []byte(`{"nodeId":1,"name":"x","value":"y"}`))
	if err == nil {
		t.Fatal("expected error setting an attribute on the document node")
	}
}

func TestRemoveNodeRejectsRoot(t *testing.T) {
	h := New(mock.New(), nil)
	_, err := h.Handle("removeNode", []byte(`{"nodeId":1}`))
	if err == nil || err.Code != cdpmsg.CodeInvalidParams {
		t.Fatalf("expected invalid params removing the document root, got %v", err)
	}
}

func TestRemoveNodePublishesMutation(t *testing.T) {
	h := New(mock.New(), nil)
	_, ch := h.Subscribe()

	_, err := h.Handle("removeNode", []byte(`{"nodeId":4}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case rec := <-ch:
		if rec.Type != "ChildListRemoved" || rec.NodeID != 4 || rec.ParentNodeID != 3 {
			t.Fatalf("unexpected mutation record: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a mutation record to be published")
	}
}

func TestRemoveNodeUnknown(t *testing.T) {
	h := New(mock.New(), nil)
	_, err := h.Handle("removeNode", []byte(`{"nodeId":999}`))
	if err == nil {
		t.Fatal("expected error removing an unknown node")
	}
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := New(mock.New(), nil)
	_, ch := h.Subscribe()

	for i := 0; i < mutationBufferSize+10; i++ {
		h.Handle("setAttributeValue", []byte(`{"nodeId":4,"name":"a","value":"b"}`))
	}

	// The channel should have been closed once its buffer filled.
	drained := 0
	for range ch {
		drained++
	}
	if drained > mutationBufferSize {
		t.Fatalf("expected at most %d buffered records before drop, got %d", mutationBufferSize, drained)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := New(mock.New(), nil)
	id, ch := h.Subscribe()
	h.Unsubscribe(id)

	h.Handle("setAttributeValue", []byte(`{"nodeId":4,"name":"a","value":"b"}`))

	if _, ok := <-ch; ok {
		t.Fatal("expected the channel to be closed after Unsubscribe")
	}
}

func TestHighlightNodeAndHideHighlight(t *testing.T) {
	h := New(mock.New(), nil)
	_, err := h.Handle("highlightNode", []byte(`{"nodeId":4,"highlightConfig":{"showInfo":true}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ids := h.HighlightedNodes(); len(ids) != 1 || ids[0] != 4 {
		t.Fatalf("expected node 4 highlighted, got %+v", ids)
	}

	h.Handle("hideHighlight", nil)
	if ids := h.HighlightedNodes(); len(ids) != 0 {
		t.Fatalf("expected highlights cleared, got %+v", ids)
	}
}

func TestHighlightNodeUnknown(t *testing.T) {
	h := New(mock.New(), nil)
	_, err := h.Handle("highlightNode", []byte(`{"nodeId":999,"highlightConfig":{}}`))
	if err == nil {
		t.Fatal("expected error highlighting an unknown node")
	}
}

func TestUnknownMethod(t *testing.T) {
	h := New(mock.New(), nil)
	_, err := h.Handle("bogus", nil)
	if err == nil || err.Code != cdpmsg.CodeMethodNotFound {
		t.Fatalf("expected method not found, got %v", err)
	}
}
