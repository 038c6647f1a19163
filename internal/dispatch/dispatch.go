// Package dispatch implements the CDP request dispatcher: decode the raw
// frame, validate it, route it to the registered domain handler, and
// enqueue the resulting Response (or Error envelope) back onto the
// session. This is the component vango's ReadLoop.handleEventFrame plays
// for vango's own wire protocol, generalized to CDP's JSON-RPC model and
// layered with the same metrics/tracing instrumentation as vango's
// pkg/middleware.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/batch"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/cdpsession"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/metrics"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/telemetry"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/registry"
)

// Dispatcher routes decoded requests to the domain registry and writes
// responses back onto the originating session's outbound queue.
type Dispatcher struct {
	registry *registry.Registry
	metrics  *metrics.Metrics
	tracer   *telemetry.Tracer
	logger   *slog.Logger

	// batcher is optional; a nil batcher means no domain currently has
	// pending coalesced events to flush on session close.
	batcher *batch.Batcher
}

// SetBatcher wires the event batcher sitting in front of this dispatcher's
// SendEvent path, so HandleSessionClose can flush pending coalesced
// batches for a closing session (spec.md §4.4's "flush is also triggered
// on session close").
func (d *Dispatcher) SetBatcher(b *batch.Batcher) {
	d.batcher = b
}

// HandleSessionClose implements transport.SessionCloseHandler.
func (d *Dispatcher) HandleSessionClose(sess *cdpsession.Session) {
	if d.batcher != nil {
		d.batcher.Close(sess)
	}
}

// New creates a Dispatcher. metrics/tracer may be nil, in which case
// instrumentation is skipped.
func New(reg *registry.Registry, m *metrics.Metrics, tracer *telemetry.Tracer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		registry: reg,
		metrics:  m,
		tracer:   tracer,
		logger:   logger.With("component", "dispatch"),
	}
}

// HandleMessage implements transport.MessageHandler. It never panics on
// malformed input: every failure path produces a well-formed Response
// enqueued back to the caller, per spec.md's error taxonomy.
func (d *Dispatcher) HandleMessage(sess *cdpsession.Session, raw []byte) {
	req, decodeErr := cdpmsg.Decode(raw)
	if decodeErr != nil {
		d.recordError("", decodeErr)
		d.send(sess, cdpmsg.NewErrorResponse(0, decodeErr))
		return
	}

	if !sess.AcceptsDispatch() {
		err := cdpmsg.InvalidRequest("session is not active")
		d.recordError("", err)
		d.send(sess, cdpmsg.NewErrorResponse(req.ID, err))
		return
	}

	domain, method, _ := cdpmsg.Domain(req.Method)

	handler, ok := d.registry.Lookup(domain)
	if !ok {
		err := cdpmsg.MethodNotFound(req.Method)
		d.recordError(domain, err)
		d.send(sess, cdpmsg.NewErrorResponse(req.ID, err))
		return
	}

	var (
		result any
		cdpErr *cdpmsg.Error
	)

	run := func(ctx context.Context) error {
		start := time.Now()
		result, cdpErr = func() (res any, herr *cdpmsg.Error) {
			defer func() {
				if r := recover(); r != nil {
					res, herr = nil, cdpmsg.InternalError(fmt.Sprint(r))
				}
			}()
			return handler.Handle(method, req.Params)
		}()
		if d.metrics != nil {
			status := "success"
			if cdpErr != nil {
				status = "error"
			}
			d.metrics.RecordRequest(domain, status, time.Since(start).Seconds())
		}
		if cdpErr != nil {
			return cdpErr
		}
		return nil
	}

	if d.tracer != nil {
		_ = d.tracer.Trace(context.Background(), domain, method, run)
	} else {
		_ = run(context.Background())
	}

	if cdpErr != nil {
		d.recordError(domain, cdpErr)
		d.send(sess, cdpmsg.NewErrorResponse(req.ID, cdpErr))
		return
	}

	d.send(sess, cdpmsg.NewResult(req.ID, result))
}

func (d *Dispatcher) recordError(domain string, err *cdpmsg.Error) {
	d.logger.Warn("dispatch error", "domain", domain, "code", err.Code, "message", err.Message)
	if d.metrics != nil {
		d.metrics.RecordRequestError(domain, err.Code)
	}
}

func (d *Dispatcher) send(sess *cdpsession.Session, resp *cdpmsg.Response) {
	data, err := cdpmsg.Marshal(resp)
	if err != nil {
		d.logger.Error("marshal response failed", "error", err)
		return
	}
	sess.Enqueue(string(data))
}

// SendEvent marshals ev and enqueues it onto sess's outbound queue,
// recording the events-sent metric. Used directly by domains that don't
// go through the batcher, and by internal/batch on flush.
func (d *Dispatcher) SendEvent(sess *cdpsession.Session, domain string, ev *cdpmsg.Event) {
	data, err := cdpmsg.MarshalEvent(ev)
	if err != nil {
		d.logger.Error("marshal event failed", "error", err)
		return
	}
	sess.Enqueue(string(data))
	if d.metrics != nil {
		d.metrics.RecordEventSent(domain)
	}
}
