// Package runtime implements the CDP Runtime domain: remote-object
// evaluation bookkeeping backed by a bounded LRU RemoteObjectCache
// (spec.md §4.9), in the same container/list + index-map idiom as the
// teacher's session manager's detached-session LRU queue.
package runtime

import (
	"container/list"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// RemoteObject mirrors CDP's RemoteObject: a JS value (or a reference to
// one) the client can later query or release by id.
type RemoteObject struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype,omitempty"`
	ClassName   string `json:"className,omitempty"`
	Description string `json:"description,omitempty"`
	ObjectID    string `json:"objectId,omitempty"`
	Value       any    `json:"value,omitempty"`
}

type cacheEntry struct {
	objectID string
	value    RemoteObject
}

// Cache is a fixed-capacity LRU of (object_id, value) pairs. Lookups
// refresh recency; inserts past capacity evict the least-recently-used
// entry. Zero value is not usable — construct with NewCache.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front = most recently used
	index    map[string]*list.Element
}

// NewCache builds a Cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Put inserts or replaces the entry for objectID, evicting the
// least-recently-used entry if the cache is over capacity afterward.
func (c *Cache) Put(objectID string, value RemoteObject) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[objectID]; ok {
		el.Value.(*cacheEntry).value = value
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&cacheEntry{objectID: objectID, value: value})
	c.index[objectID] = el
	if c.capacity > 0 && c.order.Len() > c.capacity {
		c.evictLocked()
	}
}

// Get looks up objectID, refreshing its recency on a hit.
func (c *Cache) Get(objectID string) (RemoteObject, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[objectID]
	if !ok {
		return RemoteObject{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

// Release removes objectID from the cache, if present.
func (c *Cache) Release(objectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[objectID]
	if !ok {
		return
	}
	c.order.Remove(el)
	delete(c.index, objectID)
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// evictLocked must be called with c.mu held.
func (c *Cache) evictLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	entry := back.Value.(*cacheEntry)
	c.order.Remove(back)
	delete(c.index, entry.objectID)
}

// Handler implements the Runtime domain.
type Handler struct {
	cache  *Cache
	nextID uint64
}

// New creates a Runtime handler whose cache holds at most maxEntries
// remote objects.
func New(maxEntries int) *Handler {
	return &Handler{cache: NewCache(maxEntries)}
}

func (h *Handler) Name() string { return "Runtime" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "releaseObject":
		var p struct {
			ObjectID string `json:"objectId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.cache.Release(p.ObjectID)
		return struct{}{}, nil

	case "releaseObjectGroup":
		// No group tracking in this implementation; accepted as a no-op.
		return struct{}{}, nil

	case "getProperties":
		var p struct {
			ObjectID string `json:"objectId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		obj, ok := h.cache.Get(p.ObjectID)
		if !ok {
			return nil, cdpmsg.ObjectNotFound(p.ObjectID)
		}
		return map[string]any{"result": []any{}, "object": obj}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Runtime." + method)
	}
}

// Evaluate stores result under a freshly minted object id and returns the
// RemoteObject the client sees, mirroring what Runtime.evaluate would do
// against a real JS engine (there is no wire method here — evaluation
// itself is outside this domain's scope; callers mint RemoteObjects from
// whatever produced the value and cache them here).
func (h *Handler) Evaluate(value RemoteObject) RemoteObject {
	id := atomic.AddUint64(&h.nextID, 1)
	value.ObjectID = fmt.Sprintf("obj-%d", id)
	h.cache.Put(value.ObjectID, value)
	return value
}

// CacheLen exposes the cache's current size for tests and metrics.
func (h *Handler) CacheLen() int {
	return h.cache.Len()
}
