// Package debugger implements the CDP Debugger domain: an
// Idle/Enabled/Paused state machine gating breakpoint and stepping
// operations (spec.md §4.9).
package debugger

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

type state int

const (
	stateIdle state = iota
	stateEnabled
	statePaused
)

// Breakpoint is one registered source breakpoint.
type Breakpoint struct {
	ID         string `json:"breakpointId"`
	URL        string `json:"url"`
	LineNumber int    `json:"lineNumber"`
}

// CallFrame is a minimal paused-frame descriptor, enough to validate
// evaluateOnCallFrame's callFrameId.
type CallFrame struct {
	CallFrameID  string `json:"callFrameId"`
	FunctionName string `json:"functionName"`
}

// Handler implements the Debugger domain.
type Handler struct {
	mu          sync.Mutex
	state       state
	breakpoints map[string]Breakpoint
	callFrames  []CallFrame
	nextBPID    uint64
}

// New creates an Idle Debugger handler.
func New() *Handler {
	return &Handler{breakpoints: make(map[string]Breakpoint)}
}

func (h *Handler) Name() string { return "Debugger" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch method {
	case "enable":
		h.state = stateEnabled
		return struct{}{}, nil

	case "disable":
		h.state = stateIdle
		h.breakpoints = make(map[string]Breakpoint)
		h.callFrames = nil
		return struct{}{}, nil

	case "pause":
		if h.state == stateIdle {
			return nil, cdpmsg.DebuggerNotEnabled()
		}
		h.state = statePaused
		return struct{}{}, nil

	case "resume":
		if h.state != statePaused {
			return nil, cdpmsg.DebuggerNotPaused()
		}
		h.state = stateEnabled
		h.callFrames = nil
		return struct{}{}, nil

	case "stepOver", "stepInto", "stepOut":
		if h.state != statePaused {
			return nil, cdpmsg.DebuggerNotPaused()
		}
		return struct{}{}, nil

	case "evaluateOnCallFrame":
		if h.state != statePaused {
			return nil, cdpmsg.DebuggerNotPaused()
		}
		var p struct {
			CallFrameID string `json:"callFrameId"`
			Expression  string `json:"expression"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		found := false
		for _, f := range h.callFrames {
			if f.CallFrameID == p.CallFrameID {
				found = true
				break
			}
		}
		if !found {
			return nil, cdpmsg.ObjectNotFound(p.CallFrameID)
		}
		return map[string]any{"result": map[string]string{"type": "undefined"}}, nil

	case "setBreakpointByUrl":
		if h.state == stateIdle {
			return nil, cdpmsg.DebuggerNotEnabled()
		}
		var p struct {
			URL        string `json:"url"`
			LineNumber int    `json:"lineNumber"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.URL == "" {
			return nil, cdpmsg.InvalidParams("url is required")
		}
		id := fmt.Sprintf("bp-%d", atomic.AddUint64(&h.nextBPID, 1))
		bp := Breakpoint{ID: id, URL: p.URL, LineNumber: p.LineNumber}
		h.breakpoints[id] = bp
		return map[string]any{"breakpointId": id, "locations": []any{}}, nil

	case "removeBreakpoint":
		if h.state == stateIdle {
			return nil, cdpmsg.DebuggerNotEnabled()
		}
		var p struct {
			BreakpointID string `json:"breakpointId"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		delete(h.breakpoints, p.BreakpointID)
		return struct{}{}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Debugger." + method)
	}
}

// EnterPause transitions into Paused with the given stack, simulating a
// breakpoint hit driven by a BrowserBridge rather than a wire call.
// Requires the domain to already be Enabled.
func (h *Handler) EnterPause(frames []CallFrame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == stateIdle {
		return fmt.Errorf("debugger: cannot pause while disabled")
	}
	h.state = statePaused
	h.callFrames = append([]CallFrame(nil), frames...)
	return nil
}

// State reports the current state as a string, for tests and diagnostics.
func (h *Handler) State() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch h.state {
	case stateEnabled:
		return "Enabled"
	case statePaused:
		return "Paused"
	default:
		return "Idle"
	}
}
