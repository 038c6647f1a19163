package cdpsession

import (
	"log/slog"
	"sync"
)

// Manager is the process-wide session map: insert on accept, remove on
// close, concurrent lookup from any number of connection goroutines
// (spec.md §5 "Session map: concurrent hash-map").
type Manager struct {
	mu       sync.RWMutex
	sessions map[ID]*Session
	logger   *slog.Logger

	// peak and total are retained for the Integration Facade's metrics
	// surface; they are monotone counters, never decremented except peak
	// which tracks the high-water mark of len(sessions).
	totalCreated uint64
	peak         int
}

// NewManager creates an empty Manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[ID]*Session),
		logger:   logger.With("component", "session_manager"),
	}
}

// Create allocates a fresh Session, inserts it into the map, and logs its
// creation (spec.md §4.1 "create a Session, insert into the session map
// keyed by a fresh SessionId, log creation").
func (m *Manager) Create() *Session {
	sess := New(NewID(), m.logger)

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.totalCreated++
	if len(m.sessions) > m.peak {
		m.peak = len(m.sessions)
	}
	m.mu.Unlock()

	m.logger.Info("session created", "session_id", sess.ID().String())
	return sess
}

// Get returns the session for id, if still tracked.
func (m *Manager) Get(id ID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove closes and removes the session for id. Safe to call more than
// once; a second call is a no-op.
func (m *Manager) Remove(id ID) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		sess.Close()
		m.logger.Info("session closed", "session_id", id.String())
	}
}

// Count returns the number of currently tracked sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stats is a point-in-time snapshot of session counters.
type Stats struct {
	Active       int
	TotalCreated uint64
	Peak         int
}

// Snapshot returns the current session statistics.
func (m *Manager) Snapshot() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Active:       len(m.sessions),
		TotalCreated: m.totalCreated,
		Peak:         m.peak,
	}
}

// Each calls fn for every currently tracked session. fn must not call back
// into Manager methods that take the write lock.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		fn(s)
	}
}
