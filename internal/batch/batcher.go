// Package batch implements the Event Batcher: bounded coalescing of
// outbound CDP events per (session, domain), flushed on size, age, or
// session close. Grounded on vango's WriteLoop ticker-driven flush
// pattern (pkg/server/websocket.go) generalized from a heartbeat timer to
// a per-key batch-age timer.
package batch

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/cdpsession"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
)

// Sink is the thing a batch flush writes to. internal/dispatch.Dispatcher
// implements this.
type Sink interface {
	SendEvent(sess *cdpsession.Session, domain string, ev *cdpmsg.Event)
}

// FlushMetrics optionally records flush/coalesce counts; nil disables
// recording.
type FlushMetrics interface {
	RecordBatchFlushed(reason string)
	RecordBatchCoalesced(domain string)
}

// Config bounds one batch.
type Config struct {
	MaxBatchSize int
	MaxBatchAge  time.Duration
}

// DefaultConfig matches spec.md's "individual frames" default: a
// MaxBatchSize of 1 sends every event immediately, even for domains that
// pass a batchMethod to Emit.
func DefaultConfig() Config {
	return Config{MaxBatchSize: 1, MaxBatchAge: 0}
}

type key struct {
	session cdpsession.ID
	domain  string
}

type pendingBatch struct {
	mu      sync.Mutex
	events  []any
	method  string
	firstAt time.Time
	timer   *time.Timer
}

// Batcher coalesces events per (session, domain). A single Batcher serves
// every connected session; state for a closed session is removed via
// Close.
type Batcher struct {
	mu      sync.Mutex
	cfg     Config
	sink    Sink
	metrics FlushMetrics
	logger  *slog.Logger

	pending map[key]*pendingBatch
}

// New creates a Batcher. Batching only coalesces events whose Emit call
// names a non-empty batchMethod; every other Emit is sent as an individual
// frame, matching
// spec.md §4.4's stated default.
func New(cfg Config, sink Sink, metrics FlushMetrics, logger *slog.Logger) *Batcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 1
	}
	return &Batcher{
		cfg:     cfg,
		sink:    sink,
		metrics: metrics,
		logger:  logger.With("component", "event_batcher"),
		pending: make(map[key]*pendingBatch),
	}
}

// Emit records one event for (sess, domain). If batchMethod is empty, or
// MaxBatchSize is 1, the event is sent immediately as an individual
// frame. Otherwise it is coalesced until
// max_batch_size or max_batch_age triggers a flush.
func (b *Batcher) Emit(sess *cdpsession.Session, domain, batchMethod string, ev *cdpmsg.Event) {
	if batchMethod == "" || b.cfg.MaxBatchSize <= 1 {
		b.sink.SendEvent(sess, domain, ev)
		return
	}

	k := key{session: sess.ID(), domain: domain}

	b.mu.Lock()
	pb, ok := b.pending[k]
	if !ok {
		pb = &pendingBatch{method: batchMethod, firstAt: time.Now()}
		b.pending[k] = pb
	}
	b.mu.Unlock()

	pb.mu.Lock()
	pb.events = append(pb.events, ev.Params)
	size := len(pb.events)
	if size == 1 {
		pb.firstAt = time.Now()
		if b.cfg.MaxBatchAge > 0 {
			pb.timer = time.AfterFunc(b.cfg.MaxBatchAge, func() {
				b.flush(sess, k, "max_age")
			})
		}
	}
	full := size >= b.cfg.MaxBatchSize
	pb.mu.Unlock()

	if b.metrics != nil {
		b.metrics.RecordBatchCoalesced(domain)
	}

	if full {
		b.flush(sess, k, "max_size")
	}
}

// flush drains and sends the batch for k, if one is pending. Safe to call
// more than once; a second call on an empty batch is a no-op.
func (b *Batcher) flush(sess *cdpsession.Session, k key, reason string) {
	b.mu.Lock()
	pb, ok := b.pending[k]
	b.mu.Unlock()
	if !ok {
		return
	}

	pb.mu.Lock()
	if pb.timer != nil {
		pb.timer.Stop()
	}
	events := pb.events
	method := pb.method
	pb.events = nil
	pb.mu.Unlock()

	if len(events) == 0 {
		return
	}

	b.sink.SendEvent(sess, k.domain, &cdpmsg.Event{
		Method: method,
		Params: map[string]any{"events": events},
	})
	if b.metrics != nil {
		b.metrics.RecordBatchFlushed(reason)
	}
}

// Close flushes and discards all pending batches for sess, across every
// domain. Call this when a session closes so no coalesced events are lost
// (spec.md §4.4 "Flush is also triggered on session close").
func (b *Batcher) Close(sess *cdpsession.Session) {
	b.mu.Lock()
	var keys []key
	for k := range b.pending {
		if k.session == sess.ID() {
			keys = append(keys, k)
		}
	}
	b.mu.Unlock()

	for _, k := range keys {
		b.flush(sess, k, "session_close")
		b.mu.Lock()
		delete(b.pending, k)
		b.mu.Unlock()
	}
}
