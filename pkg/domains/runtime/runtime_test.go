package runtime

import "testing"

func TestCachePutAndGetRefreshesRecency(t *testing.T) {
	c := NewCache(2)
	c.Put("a", RemoteObject{Type: "string", Value: "1"})
	c.Put("b", RemoteObject{Type: "string", Value: "2"})

	// Touch "a" so it becomes most-recently-used.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be present")
	}

	c.Put("c", RemoteObject{Type: "string", Value: "3"})

	// "b" is now the least-recently-used and should have been evicted.
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to still be cached")
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatal("expected c to be cached")
	}
	if c.Len() != 2 {
		t.Fatalf("expected cache size 2, got %d", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsedNotOldest(t *testing.T) {
	c := NewCache(2)
	c.Put("a", RemoteObject{Type: "string"})
	c.Put("b", RemoteObject{Type: "string"})
	c.Get("a") // a becomes MRU, b stays LRU
	c.Put("c", RemoteObject{Type: "string"})

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected the least-recently-used entry b to be evicted, not a")
	}
}

func TestCachePutReplacesExistingEntry(t *testing.T) {
	c := NewCache(2)
	c.Put("a", RemoteObject{Type: "string", Value: "old"})
	c.Put("a", RemoteObject{Type: "string", Value: "new"})

	v, ok := c.Get("a")
	if !ok || v.Value != "new" {
		t.Fatalf("expected replaced value, got %+v ok=%v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("expected a single entry after replace, got %d", c.Len())
	}
}

func TestCacheRelease(t *testing.T) {
	c := NewCache(2)
	c.Put("a", RemoteObject{Type: "string"})
	c.Release("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be released")
	}
}

func TestEvaluateMintsObjectIDAndCaches(t *testing.T) {
	h := New(10)
	obj := h.Evaluate(RemoteObject{Type: "number", Value: 42})
	if obj.ObjectID == "" {
		t.Fatal("expected Evaluate to mint a non-empty objectId")
	}
	if h.CacheLen() != 1 {
		t.Fatalf("expected 1 cached object, got %d", h.CacheLen())
	}
}

func TestReleaseObjectWireMethod(t *testing.T) {
	h := New(10)
	obj := h.Evaluate(RemoteObject{Type: "number", Value: 1})

	_, err := h.Handle("releaseObject", []byte(`{"objectId":"`+obj.ObjectID+`"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.CacheLen() != 0 {
		t.Fatal("expected releaseObject to remove the cached entry")
	}
}

func TestGetPropertiesUnknownObject(t *testing.T) {
	h := New(10)
	_, err := h.Handle("getProperties", []byte(`{"objectId":"missing"}`))
	if err == nil {
		t.Fatal("expected ObjectNotFound for an unknown object id")
	}
}

func TestUnknownMethod(t *testing.T) {
	h := New(10)
	_, err := h.Handle("bogus", nil)
	if err == nil || err.Code != -32601 {
		t.Fatalf("expected method not found, got %v", err)
	}
}
