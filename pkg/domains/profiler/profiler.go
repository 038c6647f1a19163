// Package profiler implements the CDP Profiler domain: a CPU sampling
// profiler built around an in-memory call tree, plus a lightweight
// precise-coverage side channel (spec.md §4.5, SPEC_FULL.md §6.1).
package profiler

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

type state int

const (
	stateIdle state = iota
	stateRunning
)

// CallFrame identifies one stack frame. Two samples land on the same tree
// node iff their CallFrame at that depth compares equal.
type CallFrame struct {
	FunctionName string `json:"functionName"`
	ScriptID     string `json:"scriptId"`
	URL          string `json:"url"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber"`
}

type node struct {
	id            int
	frame         CallFrame
	children      map[CallFrame]*node
	hitCount      int
	positionTicks map[int]int
}

// PositionTick is one line's hit count within a node.
type PositionTick struct {
	Line  int `json:"line"`
	Ticks int `json:"ticks"`
}

// ExportNode is one node of the exported call tree.
type ExportNode struct {
	ID            int            `json:"id"`
	CallFrame     CallFrame      `json:"callFrame"`
	Children      []int          `json:"children,omitempty"`
	HitCount      int            `json:"hitCount"`
	PositionTicks []PositionTick `json:"positionTicks,omitempty"`
}

// HotFunction summarizes one function's aggregate hit count across the
// whole tree (a function may occupy more than one node).
type HotFunction struct {
	FunctionName string `json:"functionName"`
	HitCount     int    `json:"hitCount"`
}

// Profile is the result of Profiler.stop.
type Profile struct {
	Nodes        []ExportNode  `json:"nodes"`
	StartTime    float64       `json:"startTime"`
	EndTime      float64       `json:"endTime"`
	Samples      []int         `json:"samples"`
	TimeDeltas   []int64       `json:"timeDeltas"`
	TotalSamples int           `json:"totalSamples"`
	TotalNodes   int           `json:"totalNodes"`
	HotFunctions []HotFunction `json:"hotFunctions"`
}

// ScriptCoverage is one script's precise-coverage record.
type ScriptCoverage struct {
	ScriptID  string             `json:"scriptId"`
	URL       string             `json:"url"`
	Functions []FunctionCoverage `json:"functions"`
}

// FunctionCoverage is one function's coverage ranges within a script.
type FunctionCoverage struct {
	FunctionName    string          `json:"functionName"`
	Ranges          []CoverageRange `json:"ranges"`
	IsBlockCoverage bool            `json:"isBlockCoverage"`
}

// CoverageRange is one [start,end) byte range's execution count.
type CoverageRange struct {
	StartOffset int `json:"startOffset"`
	EndOffset   int `json:"endOffset"`
	Count       int `json:"count"`
}

// Config bounds the CPU sampling profiler's defaults.
type Config struct {
	// SamplingIntervalUS seeds cpu_profiler.sampling_interval_µs before
	// any Profiler.setSamplingInterval call overrides it.
	SamplingIntervalUS int64
}

// DefaultConfig returns the 1kHz sampling default.
func DefaultConfig() Config {
	return Config{SamplingIntervalUS: 1000}
}

// Handler implements the Profiler domain.
type Handler struct {
	mu sync.Mutex

	enabled bool
	state   state

	root       *node
	nextID     int
	samples    []int
	timeDeltas []int64
	startTime  time.Time
	lastSample time.Time

	samplingIntervalUS int64

	coverageEnabled bool
	coverage        map[string]ScriptCoverage
}

// New creates an idle Profiler handler seeded from cfg.
func New(cfg Config) *Handler {
	if cfg.SamplingIntervalUS <= 0 {
		cfg.SamplingIntervalUS = DefaultConfig().SamplingIntervalUS
	}
	return &Handler{
		samplingIntervalUS: cfg.SamplingIntervalUS,
		coverage:           make(map[string]ScriptCoverage),
	}
}

func (h *Handler) Name() string { return "Profiler" }

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

	case "setSamplingInterval":
		var p struct {
			Interval int64 `json:"interval"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Interval <= 0 {
			return nil, cdpmsg.InvalidParams("interval must be positive")
		}
		h.mu.Lock()
		h.samplingIntervalUS = p.Interval
		h.mu.Unlock()
		return struct{}{}, nil

	case "start":
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.state != stateIdle {
			return nil, cdpmsg.ServerError(cdpmsg.ServerErrorMin, "Profiler.start called while already running")
		}
		h.state = stateRunning
		h.root = &node{
			id:            1,
			frame:         CallFrame{FunctionName: "(root)"},
			children:      make(map[CallFrame]*node),
			positionTicks: make(map[int]int),
		}
		h.nextID = 2
		h.samples = nil
		h.timeDeltas = nil
		h.startTime = time.Now()
		h.lastSample = h.startTime
		return struct{}{}, nil

	case "stop":
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.state != stateRunning {
			return nil, cdpmsg.ServerError(cdpmsg.ServerErrorMin, "Profiler.stop called while not running")
		}
		h.state = stateIdle
		return h.exportLocked(), nil

	case "startPreciseCoverage":
		h.mu.Lock()
		h.coverageEnabled = true
		h.coverage = make(map[string]ScriptCoverage)
		h.mu.Unlock()
		return struct{}{}, nil

	case "stopPreciseCoverage":
		h.mu.Lock()
		h.coverageEnabled = false
		h.mu.Unlock()
		return struct{}{}, nil

	case "takePreciseCoverage":
		h.mu.Lock()
		defer h.mu.Unlock()
		if !h.coverageEnabled {
			return nil, cdpmsg.ServerError(cdpmsg.ServerErrorMin, "Profiler.takePreciseCoverage called without startPreciseCoverage")
		}
		result := coverageList(h.coverage)
		h.coverage = make(map[string]ScriptCoverage)
		return map[string][]ScriptCoverage{"result": result}, nil

	case "getBestEffortCoverage":
		h.mu.Lock()
		defer h.mu.Unlock()
		return map[string][]ScriptCoverage{"result": coverageList(h.coverage)}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Profiler." + method)
	}
}

func coverageList(m map[string]ScriptCoverage) []ScriptCoverage {
	out := make([]ScriptCoverage, 0, len(m))
	for _, sc := range m {
		out = append(out, sc)
	}
	return out
}

// AddSample ingests one stack sample, top-down (caller first). It is
// silently dropped if the profiler is not Running — samples arrive from a
// BrowserBridge-driven simulation, not over the wire.
func (h *Handler) AddSample(stack []CallFrame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != stateRunning {
		return
	}

	cur := h.root
	for _, frame := range stack {
		child, ok := cur.children[frame]
		if !ok {
			child = &node{id: h.nextID, frame: frame, children: make(map[CallFrame]*node), positionTicks: make(map[int]int)}
			h.nextID++
			cur.children[frame] = child
		}
		cur = child
	}
	cur.hitCount++
	if len(stack) > 0 {
		cur.positionTicks[stack[len(stack)-1].LineNumber]++
	}

	now := time.Now()
	var delta int64
	if len(h.samples) == 0 {
		delta = now.Sub(h.startTime).Microseconds()
	} else {
		delta = now.Sub(h.lastSample).Microseconds()
	}
	h.samples = append(h.samples, cur.id)
	h.timeDeltas = append(h.timeDeltas, delta)
	h.lastSample = now
}

// AddCoverage records (or replaces) one script's precise-coverage data.
func (h *Handler) AddCoverage(sc ScriptCoverage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.coverage[sc.ScriptID] = sc
}

// IsRunning reports whether Profiler.start has been called without a
// matching Profiler.stop.
func (h *Handler) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == stateRunning
}

// exportLocked must be called with h.mu held.
func (h *Handler) exportLocked() Profile {
	var nodes []ExportNode
	hits := make(map[string]int)
	var walk func(n *node)
	walk = func(n *node) {
		export := ExportNode{ID: n.id, CallFrame: n.frame, HitCount: n.hitCount}
		for line, ticks := range n.positionTicks {
			export.PositionTicks = append(export.PositionTicks, PositionTick{Line: line, Ticks: ticks})
		}
		sort.Slice(export.PositionTicks, func(i, j int) bool { return export.PositionTicks[i].Line < export.PositionTicks[j].Line })
		for _, c := range n.children {
			export.Children = append(export.Children, c.id)
		}
		sort.Ints(export.Children)
		nodes = append(nodes, export)
		if n.frame.FunctionName != "" {
			hits[n.frame.FunctionName] += n.hitCount
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(h.root)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	hot := make([]HotFunction, 0, len(hits))
	for name, count := range hits {
		hot = append(hot, HotFunction{FunctionName: name, HitCount: count})
	}
	sort.Slice(hot, func(i, j int) bool {
		if hot[i].HitCount != hot[j].HitCount {
			return hot[i].HitCount > hot[j].HitCount
		}
		return hot[i].FunctionName < hot[j].FunctionName
	})

	return Profile{
		Nodes:        nodes,
		StartTime:    h.startTime.Sub(time.Unix(0, 0)).Seconds(),
		EndTime:      time.Now().Sub(time.Unix(0, 0)).Seconds(),
		Samples:      append([]int(nil), h.samples...),
		TimeDeltas:   append([]int64(nil), h.timeDeltas...),
		TotalSamples: len(h.samples),
		TotalNodes:   len(nodes),
		HotFunctions: hot,
	}
}
