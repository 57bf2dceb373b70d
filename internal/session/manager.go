package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Factory builds an empty session for a namespace.
type Factory func(namespace string) *Session

// Manager hands out one live Session per namespace, restoring persisted state
// the first time a namespace is seen.
type Manager struct {
	factory Factory
	logger  *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager.
func NewManager(factory Factory, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{factory: factory, logger: logger, sessions: make(map[string]*Session)}
}

// Get returns the session for namespace. A snapshot that cannot be restored is
// logged and the session starts empty, so a bad row never locks a user out.
func (m *Manager) Get(ctx context.Context, namespace string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[namespace]; ok {
		return s
	}

	s := m.factory(namespace)
	if err := s.Restore(ctx); err != nil {
		m.logger.Warn("starting with an empty session", zap.String("namespace", namespace), zap.Error(err))
	}
	m.sessions[namespace] = s
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
