// Package facade is the Integration Facade: it wires every domain
// handler into a registry.Registry, binds the dispatcher to the
// transport listener, and exposes a single Start/Stop lifecycle.
// Grounded on vango's cmd/vango/dev.go (build-the-whole-server-then-
// Start/Stop pattern) and pkg/vango's top-level App wiring.
package facade

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/batch"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/cdpsession"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/config"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/dispatch"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/metrics"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/telemetry"
	"github.com/Corten-Browser/Corten-DevTools-sub001/internal/transport"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/bridge/mock"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/cdpmsg"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/browser"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/console"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/css"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/debugger"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/dom"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/emulation"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/heapprofiler"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/network"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/page"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/profiler"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/runtime"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/security"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/storage"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/domains/timeline"
	"github.com/Corten-Browser/Corten-DevTools-sub001/pkg/registry"
)

// batchMethods names, per domain, the coalescing key events of that
// domain batch under (spec.md §4.4). Domains not listed here are sent as
// individual frames. DOM mutation records are the one high-volume event
// stream in this server (a single attribute edit on a subtree can fan out
// into many records), so it is the one domain that opts into coalescing
// by default.
var batchMethods = map[string]string{
	"DOM": "DOM.mutationBatch",
}

// broadcaster implements every domain's narrow EventEmitter interface
// (Emit(domain string, ev *cdpmsg.Event)) by fanning the event out to
// every currently connected session through the event batcher. Domain
// handlers are process-wide singletons shared across sessions, so there
// is no single session to target; broadcasting to all attached debugger
// clients is the same posture Chrome itself takes for page-level events
// with multiple attached frontends.
type broadcaster struct {
	manager *cdpsession.Manager
	batcher *batch.Batcher
}

func (b *broadcaster) Emit(domain string, ev *cdpmsg.Event) {
	b.manager.Each(func(sess *cdpsession.Session) {
		b.batcher.Emit(sess, domain, batchMethods[domain], ev)
	})
}

// App is the fully wired server: transport listener, dispatcher,
// registered domain handlers, and (optionally) the event batcher sitting
// in front of the dispatcher's SendEvent path.
type App struct {
	cfg        config.Config
	logger     *slog.Logger
	manager    *cdpsession.Manager
	registry   *registry.Registry
	metrics    *metrics.Metrics
	tracer     *telemetry.Tracer
	dispatcher *dispatch.Dispatcher
	batcher    *batch.Batcher
	emitter    *broadcaster
	server     *transport.Server

	domHandler *dom.Handler
	domSubID   int
	domDone    chan struct{}
}

// mutationEvent translates a dom.MutationRecord into the CDP wire event a
// DevTools frontend expects, so the batched/coalesced form carries the
// same method names an unbatched DOM.* event would.
func mutationEvent(rec dom.MutationRecord) *cdpmsg.Event {
	switch rec.Type {
	case "AttributeModified":
		return &cdpmsg.Event{
			Method: "DOM.attributeModified",
			Params: map[string]any{"nodeId": rec.NodeID, "name": rec.Name, "value": rec.Value},
		}
	case "ChildListRemoved":
		return &cdpmsg.Event{
			Method: "DOM.childNodeRemoved",
			Params: map[string]any{"parentNodeId": rec.ParentNodeID, "nodeId": rec.NodeID},
		}
	default:
		return &cdpmsg.Event{Method: "DOM.mutation", Params: rec}
	}
}

// New builds an App from cfg without starting it. version is the static
// identity reported by Browser.getVersion; argv is echoed back from
// Browser.getBrowserCommandLine (nil defaults to os.Args inside the
// browser handler).
func New(cfg config.Config, version browser.VersionInfo, argv []string, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	for _, warning := range cfg.Validate() {
		logger.Warn("config warning", "warning", warning)
	}

	manager := cdpsession.NewManager(logger)
	reg := registry.New()
	m := metrics.New(cfg.Metrics)
	tracer := telemetry.New(cfg.Telemetry)
	dispatcher := dispatch.New(reg, m, tracer, logger)
	batcher := batch.New(cfg.Batch, dispatcher, m, logger)
	emitter := &broadcaster{manager: manager, batcher: batcher}

	bridge := mock.New()
	storageHandler := storage.New()

	reg.Register(browser.New(version, argv))
	reg.Register(page.New())
	reg.Register(emulation.New())
	reg.Register(security.New(emitter))
	reg.Register(console.New(emitter))
	reg.Register(storageHandler)
	reg.Register(timeline.New())
	reg.Register(profiler.New(cfg.Profiler))
	reg.Register(heapprofiler.New(cfg.HeapProfiler))
	reg.Register(network.New(cfg.NetworkMaxResponseBodySize, cfg.NetworkMaxRequestBodySize, storageHandler))
	domHandler := dom.New(bridge, emitter)
	reg.Register(domHandler)
	reg.Register(css.New(bridge))
	reg.Register(runtime.New(cfg.RuntimeMaxRemoteObjects))
	reg.Register(debugger.New())

	dispatcher.SetBatcher(batcher)

	server := transport.New(cfg.Transport, manager, dispatcher, logger)

	app := &App{
		cfg:        cfg,
		logger:     logger,
		manager:    manager,
		registry:   reg,
		metrics:    m,
		tracer:     tracer,
		dispatcher: dispatcher,
		batcher:    batcher,
		emitter:    emitter,
		server:     server,
		domHandler: domHandler,
		domDone:    make(chan struct{}),
	}
	app.startMutationAdapter()
	return app
}

// startMutationAdapter subscribes to the DOM domain's internal mutation
// stream and re-emits each record through the broadcaster, so DOM
// mutations flow through the same Emit→batcher path every other domain's
// events do and genuinely opt into coalescing (batchMethods["DOM"]).
func (a *App) startMutationAdapter() {
	id, ch := a.domHandler.Subscribe()
	a.domSubID = id
	go func() {
		for {
			select {
			case rec, ok := <-ch:
				if !ok {
					return
				}
				a.emitter.Emit("DOM", mutationEvent(rec))
			case <-a.domDone:
				return
			}
		}
	}()
}

// Registry exposes the underlying handler directory, for callers that
// need to register additional domains before Start (extensibility point
// named by spec.md §4.3).
func (a *App) Registry() *registry.Registry { return a.registry }

// Start binds the transport listener and begins serving.
func (a *App) Start() error {
	if err := a.server.Start(); err != nil {
		return fmt.Errorf("facade: start: %w", err)
	}
	a.logger.Info("corten-devtools started", "addr", a.server.Addr())
	return nil
}

// Addr returns the bound listener address, valid only after Start.
func (a *App) Addr() string { return a.server.Addr() }

// Stop gracefully drains sessions and stops the listener.
func (a *App) Stop(ctx context.Context) error {
	err := a.server.Stop(ctx)
	close(a.domDone)
	a.domHandler.Unsubscribe(a.domSubID)
	return err
}
