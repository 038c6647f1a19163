// Package security implements the CDP Security domain: current
// SecurityState tracking, certificate metadata, and a state-change event
// on transition (spec.md §4.10).
package security

import (
	"encoding/json"
	"sync"

	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// State is the connection security state CDP reports.
type State string

const (
	Unknown       State = "unknown"
	Neutral       State = "neutral"
	Insecure      State = "insecure"
	Secure        State = "secure"
	Info          State = "info"
	InsecureBroken State = "insecure-broken"
)

// EventEmitter is satisfied by the session-scoped event sink a facade
// wires into every handler that produces events. Kept minimal and
// domain-agnostic so handlers don't import internal/batch directly.
type EventEmitter interface {
	Emit(domain string, ev *cdpmsg.Event)
}

// noopEmitter discards events; used when a handler is constructed without
// a wired emitter (e.g. in isolated unit tests).
type noopEmitter struct{}

func (noopEmitter) Emit(string, *cdpmsg.Event) {}

// Handler implements the Security domain.
type Handler struct {
	mu      sync.Mutex
	state   State
	certErr string
	emitter EventEmitter
}

// New creates a Security handler starting in the neutral state.
func New(emitter EventEmitter) *Handler {
	if emitter == nil {
		emitter = noopEmitter{}
	}
	return &Handler{state: Neutral, emitter: emitter}
}

func (h *Handler) Name() string { return "Security" }

func (h *Handler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	switch method {
	case "enable", "disable":
		return struct{}{}, nil

	case "setOverrideCertificateErrors":
		var p struct {
			Override bool `json:"override"`
		}
		if err := cdpmsg.DecodeParams(params, &p); err != nil {
			return nil, err
		}
		return struct{}{}, nil

	case "handleCertificateError":
		return struct{}{}, nil

	default:
		return nil, cdpmsg.MethodNotFound("Security." + method)
	}
}

// SetState transitions the tracked state and emits
// Security.securityStateChanged if it actually changed. Intended to be
// called by the integration facade or a bridge-driven simulation, not by
// wire methods (the original CDP domain has no setter method either —
// state changes are pushed by the engine).
func (h *Handler) SetState(state State, explanations []string) {
	h.mu.Lock()
	changed := h.state != state
	h.state = state
	h.mu.Unlock()

	if !changed {
		return
	}
	h.emitter.Emit("Security", &cdpmsg.Event{
		Method: "Security.securityStateChanged",
		Params: map[string]any{
			"securityState": string(state),
			"explanations":  explanations,
		},
	})
}

// CurrentState returns the tracked security state.
func (h *Handler) CurrentState() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
