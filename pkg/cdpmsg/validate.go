package cdpmsg

import (
	"bytes"
	"encoding/json"
)

// rawRequest mirrors Request but keeps id/method as raw JSON so presence
// and type can be checked explicitly rather than silently defaulting.
type rawRequest struct {
	ID     json.RawMessage `json:"id"`
	Method json.RawMessage `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Decode performs the two-step decode discipline required by the
// dispatcher: first a generic JSON parse (producing ParseError on
// failure), then a structural match against Request (producing
// InvalidRequest on failure). On success it also validates method shape,
// id type, and params type, matching spec.md's Validation rules.
//
// Exactly one of the returned *Request and *Error is non-nil.
func Decode(raw []byte) (*Request, *Error) {
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, ParseError()
	}

	obj, ok := generic.(map[string]any)
	if !ok {
		return nil, InvalidRequest("request must be a JSON object")
	}

	var rr rawRequest
	if err := json.Unmarshal(raw, &rr); err != nil {
		return nil, InvalidRequest("malformed request shape")
	}

	if _, hasID := obj["id"]; !hasID {
		return nil, InvalidRequest("missing id")
	}
	var id uint64
	if err := json.Unmarshal(rr.ID, &id); err != nil {
		return nil, InvalidRequest("id must be a non-negative integer")
	}

	methodVal, hasMethod := obj["method"]
	if !hasMethod {
		return nil, InvalidRequest("missing method")
	}
	method, ok := methodVal.(string)
	if !ok {
		return nil, InvalidRequest("method must be a string")
	}
	if _, _, ok := Domain(method); !ok {
		return nil, InvalidRequest("method must have the shape Domain.name")
	}

	if paramsVal, hasParams := obj["params"]; hasParams && paramsVal != nil {
		if _, ok := paramsVal.(map[string]any); !ok {
			return nil, InvalidRequest("params must be an object")
		}
	}

	req := &Request{ID: id, Method: method}
	if len(rr.Params) > 0 && string(rr.Params) != "null" {
		req.Params = rr.Params
	}
	return req, nil
}

// Marshal serializes a Response to its canonical wire form.
func Marshal(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// MarshalEvent serializes an Event to its canonical wire form.
func MarshalEvent(ev *Event) ([]byte, error) {
	return json.Marshal(ev)
}
