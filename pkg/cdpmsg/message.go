package cdpmsg

import (
	"encoding/json"
	"strings"
)

// Request is a client-initiated CDP call. Method has the shape
// "Domain.name" with exactly one dot; Params is opaque to the dispatcher
// and decoded by the target domain handler.
type Request struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the server's reply to a Request. Exactly one of Result or
// Error is set.
type Response struct {
	ID     uint64 `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Event is a server-initiated, unsolicited message. It carries no id.
type Event struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

// NewResult builds a success Response. result is never nil on the wire:
// callers should pass struct{}{} or map[string]any{} for "no data".
func NewResult(id uint64, result any) *Response {
	if result == nil {
		result = struct{}{}
	}
	return &Response{ID: id, Result: result}
}

// NewErrorResponse builds an error Response.
func NewErrorResponse(id uint64, err *Error) *Response {
	return &Response{ID: id, Error: err}
}

// Domain splits "Domain.method" into its two parts. ok is false unless the
// method contains exactly one dot and both halves are non-empty.
func Domain(method string) (domain, name string, ok bool) {
	idx := strings.IndexByte(method, '.')
	if idx <= 0 || idx == len(method)-1 {
		return "", "", false
	}
	if strings.IndexByte(method[idx+1:], '.') >= 0 {
		return "", "", false
	}
	return method[:idx], method[idx+1:], true
}
