package dispatch

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/cdpsession"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/registry"
)

type stubHandler struct {
	name   string
	result any
	err    *cdpmsg.Error
}

func (s *stubHandler) Name() string { return s.name }

func (s *stubHandler) Handle(method string, params json.RawMessage) (any, *cdpmsg.Error) {
	return s.result, s.err
}

func newSession() *cdpsession.Session {
	return cdpsession.New(cdpsession.NewID(), nil)
}

func TestDispatchRoutesToRegisteredHandler(t *testing.T) {
	reg := registry.New()
	reg.Register(&stubHandler{name: "Browser", result: map[string]string{"protocolVersion": "1.3"}})
	d := New(reg, nil, nil, nil)

	sess := newSession()
	d.HandleMessage(sess, []byte(`{"id":1,"method":"Browser.getVersion"}`))

	out := sess.Drain()
	if len(out) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(out))
	}
	if !strings.Contains(out[0], `"protocolVersion":"1.3"`) {
		t.Fatalf("unexpected response: %s", out[0])
	}
}

func TestDispatchParseErrorHasNoDomainLookup(t *testing.T) {
	reg := registry.New()
	d := New(reg, nil, nil, nil)

	sess := newSession()
	d.HandleMessage(sess, []byte(`not json`))

	out := sess.Drain()
	if len(out) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(out))
	}
	if !strings.Contains(out[0], `"code":-32700`) {
		t.Fatalf("expected parse error code, got %s", out[0])
	}
}

func TestDispatchMethodNotFoundForUnregisteredDomain(t *testing.T) {
	reg := registry.New()
	d := New(reg, nil, nil, nil)

	sess := newSession()
	d.HandleMessage(sess, []byte(`{"id":1,"method":"Ghost.vanish"}`))

	out := sess.Drain()
	if len(out) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(out))
	}
	if !strings.Contains(out[0], `"code":-32601`) {
		t.Fatalf("expected method-not-found code, got %s", out[0])
	}
}

func TestDispatchHandlerErrorIsPropagated(t *testing.T) {
	reg := registry.New()
	reg.Register(&stubHandler{name: "DOM", err: cdpmsg.NodeNotFound(7)})
	d := New(reg, nil, nil, nil)

	sess := newSession()
	d.HandleMessage(sess, []byte(`{"id":5,"method":"DOM.removeNode","params":{"nodeId":7}}`))

	out := sess.Drain()
	if len(out) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(out))
	}
	if !strings.Contains(out[0], `"id":5`) {
		t.Fatalf("expected id 5 echoed back, got %s", out[0])
	}
}

func TestDispatchRefusesInactiveSession(t *testing.T) {
	reg := registry.New()
	reg.Register(&stubHandler{name: "Browser", result: map[string]string{}})
	d := New(reg, nil, nil, nil)

	sess := newSession()
	sess.Pause()
	d.HandleMessage(sess, []byte(`{"id":1,"method":"Browser.getVersion"}`))

	out := sess.Drain()
	if len(out) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(out))
	}
	if !strings.Contains(out[0], `"code":-32600`) {
		t.Fatalf("expected invalid-request code for a paused session, got %s", out[0])
	}
}

func TestSendEventEnqueuesMarshaledEvent(t *testing.T) {
	reg := registry.New()
	d := New(reg, nil, nil, nil)
	sess := newSession()

	d.SendEvent(sess, "DOM", &cdpmsg.Event{Method: "DOM.attributeModified", Params: map[string]any{"nodeId": 3}})

	out := sess.Drain()
	if len(out) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(out))
	}
	if !strings.Contains(out[0], `"method":"DOM.attributeModified"`) {
		t.Fatalf("unexpected event payload: %s", out[0])
	}
}
