package cdpmsg

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResponseRoundTrip(t *testing.T) {
	resp := NewResult(1, map[string]string{"protocolVersion": "1.3"})
	data, err := Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["id"].(float64) != 1 {
		t.Fatalf("unexpected id: %v", decoded["id"])
	}
	if _, hasError := decoded["error"]; hasError {
		t.Fatal("success response must not carry an error field")
	}
}

func TestErrorResponseShape(t *testing.T) {
	resp := NewErrorResponse(2, MethodNotFound("Unknown.foo"))
	data, err := Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}

	var decoded struct {
		ID     uint64 `json:"id"`
		Result any    `json:"result"`
		Error  *Error `json:"error"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Result != nil {
		t.Fatal("error response must not carry a result field")
	}
	if decoded.Error == nil || decoded.Error.Code != CodeMethodNotFound {
		t.Fatalf("unexpected error: %+v", decoded.Error)
	}
}

func TestEventShape(t *testing.T) {
	ev := &Event{Method: "DOM.attributeModified", Params: map[string]any{"nodeId": 1}}
	data, err := MarshalEvent(ev)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if _, hasID := decoded["id"]; hasID {
		t.Fatal("events must not carry an id")
	}
	if diff := cmp.Diff("DOM.attributeModified", decoded["method"]); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNewResultDefaultsToEmptyObject(t *testing.T) {
	resp := NewResult(1, nil)
	data, err := Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Result == nil {
		t.Fatal("expected an empty object result, got nil/omitted")
	}
}
