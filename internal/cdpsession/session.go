// Package cdpsession implements per-connection CDP session state: identity,
// lifecycle, and the outbound message queue. Grounded on the original
// Rust session.rs (SessionId/SessionState/Session shape) and on vango's
// pkg/server session idiom (a mutex-guarded struct with a slog logger and
// an explicit Close that is safe to call more than once).
package cdpsession

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a Session's lifecycle state.
type State int

const (
	// Active sessions accept both inbound dispatch and outbound queueing.
	Active State = iota
	// Paused sessions still accept queued events; inbound dispatch is
	// blocked until Resume.
	Paused
	// Closed is terminal: further I/O is discarded.
	Closed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ID is an opaque, process-unique 128-bit session identifier.
type ID uuid.UUID

// NewID generates a fresh random session id.
func NewID() ID {
	return ID(uuid.New())
}

// ParseID parses a UUID-shaped string into an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Session is one connected client. All mutable fields are guarded by mu;
// the outbound queue is a plain FIFO slice rather than a bounded channel
// because spec.md §4.1 requires an *unbounded* queue whose unflushed
// contents are simply discarded on disconnect.
type Session struct {
	mu sync.Mutex

	id        ID
	state     State
	createdAt time.Time
	outbound  []string

	// notify wakes a writer pump blocked waiting for outbound traffic.
	// Buffered to 1 so Enqueue never blocks on a slow or absent reader.
	notify chan struct{}

	// done is closed exactly once, by Close, to wake any pump blocked on
	// Notify() so it can observe IsClosed and exit.
	done     chan struct{}
	doneOnce sync.Once

	logger *slog.Logger
}

// New creates a Session in the Active state.
func New(id ID, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:        id,
		state:     Active,
		createdAt: time.Now(),
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		logger:    logger.With("component", "session", "session_id", id.String()),
	}
}

// Notify returns the channel a writer pump should select on to learn that
// new outbound items are available to Drain.
func (s *Session) Notify() <-chan struct{} {
	return s.notify
}

// Done returns a channel that is closed when the session transitions to
// Closed, for a writer pump to select on alongside Notify().
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// ID returns the session's identifier.
func (s *Session) ID() ID { return s.id }

// CreatedAt returns the session's creation time.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Pause transitions Active→Paused. No-op from any other state.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Active {
		s.state = Paused
	}
}

// Resume transitions Paused→Active. No-op from any other state (in
// particular, a Closed session never resumes).
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Paused {
		s.state = Active
	}
}

// Close transitions to Closed and discards any unflushed outbound items.
// Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	s.state = Closed
	s.outbound = nil
	s.mu.Unlock()
	s.doneOnce.Do(func() { close(s.done) })
}

// IsClosed reports whether the session has been closed.
func (s *Session) IsClosed() bool {
	return s.State() == Closed
}

// AcceptsDispatch reports whether inbound requests should be routed for
// this session (only Active; Paused sessions block dispatch per spec.md §3).
func (s *Session) AcceptsDispatch() bool {
	return s.State() == Active
}

// Enqueue appends a ready-to-send string to the outbound FIFO. Events and
// responses are both enqueued this way so that ordering within one
// session, one direction is preserved (spec.md §5). A Closed session
// silently drops the item.
func (s *Session) Enqueue(payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return
	}
	s.outbound = append(s.outbound, payload)
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every currently queued outbound item, in
// FIFO order. Returns nil if the queue is empty.
func (s *Session) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.outbound) == 0 {
		return nil
	}
	items := s.outbound
	s.outbound = nil
	return items
}

// Pending returns the number of currently queued outbound items.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outbound)
}

// Logger returns the session's scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}
