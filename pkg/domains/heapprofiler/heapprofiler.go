// Package heapprofiler implements the CDP HeapProfiler domain: the memory
// allocation tracker of spec.md §4.6 (an Idle/Tracking ledger of live
// allocations with leak scoring) wired to CDP's actual HeapProfiler wire
// surface per SPEC_FULL.md §6.2.
package heapprofiler

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

type trackerState int

const (
	trackerIdle trackerState = iota
	trackerTracking
)

type allocStatus int

const (
	allocLive allocStatus = iota
	allocFreed
)

type allocation struct {
	id        uint64
	size      uint64
	stack     []string
	callSite  string
	createdAt time.Time
	status    allocStatus
}

// Config bounds the tracker's behavior, mirroring the original's
// cache_config-style knobs.
type Config struct {
	MinAllocationSize  uint64
	MaxStackDepth      int
	CaptureStackTraces bool
	LeakThresholdAge   time.Duration
	TimelineInterval   time.Duration
}

// DefaultConfig returns sensible tracker defaults.
func DefaultConfig() Config {
	return Config{
		MinAllocationSize:  16,
		MaxStackDepth:      32,
		CaptureStackTraces: true,
		LeakThresholdAge:   30 * time.Second,
		TimelineInterval:   time.Second,
	}
}

// SiteStat aggregates every allocation ever made at one call site.
type SiteStat struct {
	CallSite        string `json:"callSite"`
	AllocationCount int    `json:"allocationCount"`
	TotalBytes      uint64 `json:"totalBytes"`
	LiveBytes       uint64 `json:"liveBytes"`
}

// PotentialLeak is one live allocation old enough to flag.
type PotentialLeak struct {
	ID        uint64  `json:"id"`
	CallSite  string  `json:"callSite"`
	Size      uint64  `json:"size"`
	AgeSec    float64 `json:"ageSeconds"`
	LeakScore float64 `json:"leakScore"`
}

// Snapshot is the result of a take-snapshot call.
type Snapshot struct {
	Sites          []SiteStat      `json:"sites"`
	PotentialLeaks []PotentialLeak `json:"potentialLeaks"`
	UsedHeapSize   uint64          `json:"usedHeapSize"`
}

// TimelineSample is one periodic heap-size reading.
type TimelineSample struct {
	Timestamp    time.Time `json:"timestamp"`
	UsedHeapSize uint64    `json:"usedHeapSize"`
}

// SamplingHeapProfileNode mirrors CDP's SamplingHeapProfileNode, one
// per call site, flattened one level under a synthetic root.
type SamplingHeapProfileNode struct {
	CallFrame CallFrame                  `json:"callFrame"`
	SelfSize  uint64                     `json:"selfSize"`
	Children  []*SamplingHeapProfileNode `json:"children,omitempty"`
}

// CallFrame is a minimal stand-in for CDP's Runtime.CallFrame, scoped to
// what a call-site label needs.
type CallFrame struct {
	FunctionName string `json:"functionName"`
}

// Handler implements the HeapProfiler domain.
type Handler struct {
	mu sync.Mutex

	enabled bool
	cfg     Config
	state   trackerState

	nextID      uint64
	allocations map[uint64]*allocation

	timeline       []TimelineSample
	lastTimelineAt time.Time

	objectToHeap map[string]string
	heapToObject map[string]string
}

// New creates a Handler with the given tracker config.
func New(cfg Config) *Handler {
	if cfg.MaxStackDepth <= 0 {
		cfg.MaxStackDepth = DefaultConfig().MaxStackDepth
	}
	return &Handler{
		cfg:          cfg,
		allocations:  make(map[uint64]*allocation),
		objectToHeap: make(map[string]string),
		heapToObject: make(map[string]string),
	}
}

func (h *Handler) Name() string { return "HeapProfiler" }

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

	case "startSampling":
		var p struct {
			SamplingInterval *int64 `json:"samplingInterval"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.state != trackerIdle {
			return nil, cdpmsg.ServerError(cdpmsg.ServerErrorMin, "HeapProfiler.startSampling called while already tracking")
		}
		h.state = trackerTracking
		h.nextID = 1
		h.allocations = make(map[uint64]*allocation)
		h.timeline = nil
		return struct{}{}, nil

	case "stopSampling":
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.state != trackerTracking {
			return nil, cdpmsg.ServerError(cdpmsg.ServerErrorMin, "HeapProfiler.stopSampling called while not tracking")
		}
		h.state = trackerIdle
		return map[string]any{"profile": map[string]any{
			"head":    h.buildProfileTreeLocked(),
			"samples": []any{},
		}}, nil

	case "collectGarbage":
		h.mu.Lock()
		h.recordTimelineLocked(true)
		h.mu.Unlock()
		return struct{}{}, nil

	case "getHeapObjectId":
		var p struct {
			ObjectID string `json:"objectId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.Lock()
		heapID, ok := h.objectToHeap[p.ObjectID]
		h.mu.Unlock()
		if !ok {
			return nil, cdpmsg.ObjectNotFound(p.ObjectID)
		}
		return map[string]string{"heapSnapshotObjectId": heapID}, nil

	case "getObjectByHeapObjectId":
		var p struct {
			HeapObjectID string `json:"heapObjectId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		h.mu.Lock()
		objectID, ok := h.heapToObject[p.HeapObjectID]
		h.mu.Unlock()
		if !ok {
			return nil, cdpmsg.ObjectNotFound(p.HeapObjectID)
		}
		return map[string]any{"result": map[string]string{"type": "object", "objectId": objectID}}, nil

	default:
		return nil, cdpmsg.MethodNotFound("HeapProfiler." + method)
	}
}

// Associate registers a Runtime remote-object id against a heap snapshot
// id, bridging the two id spaces for getHeapObjectId/getObjectByHeapObjectId.
func (h *Handler) Associate(objectID, heapObjectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.objectToHeap[objectID] = heapObjectID
	h.heapToObject[heapObjectID] = objectID
}

// RecordAllocation tracks a new allocation of size bytes at stack (a
// top-down frame-name list). It returns id=0, nil when size falls below
// the configured minimum (not tracked, not an error).
func (h *Handler) RecordAllocation(size uint64, stack []string) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != trackerTracking {
		return 0, fmt.Errorf("heapprofiler: record_allocation called while not tracking")
	}
	if size < h.cfg.MinAllocationSize {
		return 0, nil
	}

	if len(stack) > h.cfg.MaxStackDepth {
		stack = stack[:h.cfg.MaxStackDepth]
	}
	var storedStack []string
	if h.cfg.CaptureStackTraces {
		storedStack = append([]string(nil), stack...)
	}

	id := h.nextID
	h.nextID++
	h.allocations[id] = &allocation{
		id:        id,
		size:      size,
		stack:     storedStack,
		callSite:  callSiteKey(stack),
		createdAt: time.Now(),
		status:    allocLive,
	}
	h.recordTimelineLocked(false)
	return id, nil
}

// RecordDeallocation frees a previously recorded allocation. It errors on
// an unknown id or on a double free; id 0 (what RecordAllocation returns
// for an untracked, below-minimum allocation) is accepted as a no-op.
func (h *Handler) RecordDeallocation(id uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != trackerTracking {
		return fmt.Errorf("heapprofiler: record_deallocation called while not tracking")
	}
	if id == 0 {
		return nil
	}
	a, ok := h.allocations[id]
	if !ok {
		return fmt.Errorf("heapprofiler: deallocation of unknown id %d", id)
	}
	if a.status == allocFreed {
		return fmt.Errorf("heapprofiler: double free of id %d", id)
	}
	a.status = allocFreed
	h.recordTimelineLocked(false)
	return nil
}

// TakeSnapshot aggregates the ledger into per-call-site stats, potential
// leaks, and the current used heap size.
func (h *Handler) TakeSnapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	sites := make(map[string]*SiteStat)
	var leaks []PotentialLeak
	var used uint64
	now := time.Now()

	for _, a := range h.allocations {
		site, ok := sites[a.callSite]
		if !ok {
			site = &SiteStat{CallSite: a.callSite}
			sites[a.callSite] = site
		}
		site.AllocationCount++
		site.TotalBytes += a.size
		if a.status == allocLive {
			site.LiveBytes += a.size
			used += a.size

			age := now.Sub(a.createdAt)
			if age >= h.cfg.LeakThresholdAge {
				leaks = append(leaks, PotentialLeak{
					ID:        a.id,
					CallSite:  a.callSite,
					Size:      a.size,
					AgeSec:    age.Seconds(),
					LeakScore: float64(a.size) * age.Seconds(),
				})
			}
		}
	}

	siteList := make([]SiteStat, 0, len(sites))
	for _, s := range sites {
		siteList = append(siteList, *s)
	}
	sort.Slice(siteList, func(i, j int) bool { return siteList[i].CallSite < siteList[j].CallSite })
	sort.Slice(leaks, func(i, j int) bool { return leaks[i].LeakScore > leaks[j].LeakScore })

	h.recordTimelineLocked(false)
	return Snapshot{Sites: siteList, PotentialLeaks: leaks, UsedHeapSize: used}
}

// GetTimeline returns the periodic heap-size samples recorded so far.
func (h *Handler) GetTimeline() []TimelineSample {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]TimelineSample(nil), h.timeline...)
}

// ForceGC is advisory: it records one timeline sample and otherwise has
// no observable effect.
func (h *Handler) ForceGC() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recordTimelineLocked(true)
}

// recordTimelineLocked must be called with h.mu held. It appends a
// sample unless one was already recorded within cfg.TimelineInterval,
// unless force is set (an explicit request bypasses the cadence).
func (h *Handler) recordTimelineLocked(force bool) {
	now := time.Now()
	if !force && !h.lastTimelineAt.IsZero() && now.Sub(h.lastTimelineAt) < h.cfg.TimelineInterval {
		return
	}
	var used uint64
	for _, a := range h.allocations {
		if a.status == allocLive {
			used += a.size
		}
	}
	h.timeline = append(h.timeline, TimelineSample{Timestamp: now, UsedHeapSize: used})
	h.lastTimelineAt = now
}

// buildProfileTreeLocked must be called with h.mu held.
func (h *Handler) buildProfileTreeLocked() *SamplingHeapProfileNode {
	totals := make(map[string]uint64)
	for _, a := range h.allocations {
		totals[a.callSite] += a.size
	}
	sites := make([]string, 0, len(totals))
	for site := range totals {
		sites = append(sites, site)
	}
	sort.Strings(sites)

	root := &SamplingHeapProfileNode{CallFrame: CallFrame{FunctionName: "(root)"}}
	for _, site := range sites {
		root.Children = append(root.Children, &SamplingHeapProfileNode{
			CallFrame: CallFrame{FunctionName: site},
			SelfSize:  totals[site],
		})
	}
	return root
}

// callSiteKey derives the aggregation key for a stack: the full
// top-down frame chain, joined, or "unknown" for an empty stack.
func callSiteKey(stack []string) string {
	if len(stack) == 0 {
		return "unknown"
	}
	return strings.Join(stack, " -> ")
}
