package session

import (
	"context"
	"sync"

	"docassist/internal/adapter/utils"
	"docassist/internal/conversation"
	"docassist/internal/domain/ragmodel"
	"docassist/pkg/logkit"
)

// LogFactory builds the conversation log backing a new session; the main
// wiring decides whether that is in-memory or redis.
type LogFactory func(sessionId string) conversation.Log

type Manager struct {
	sessionMutex *sync.RWMutex
	sessionMap   map[string]*Session
	newLog       LogFactory
	logger       *logkit.Logger
}

func NewManager(newLog LogFactory) *Manager {
	return &Manager{
		sessionMutex: new(sync.RWMutex),
		sessionMap:   make(map[string]*Session),
		newLog:       newLog,
		logger:       logkit.NewLogger("Session Manager"),
	}
}

func (m *Manager) Create() *Session {
	id := utils.GetNewUUID()
	sess := newSession(id, m.newLog(id))

	m.sessionMutex.Lock()
	defer m.sessionMutex.Unlock()
	m.sessionMap[id] = sess
	m.logger.Info("Created session", "sessionId", id)
	return sess
}

func (m *Manager) Get(id string) (*Session, error) {
	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()
	sess, found := m.sessionMap[id]
	if !found {
		return nil, ragmodel.ErrSessionNotFound
	}
	return sess, nil
}

// Delete ends a session: its documents and history go with it.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.sessionMutex.Lock()
	sess, found := m.sessionMap[id]
	delete(m.sessionMap, id)
	m.sessionMutex.Unlock()

	if !found {
		return ragmodel.ErrSessionNotFound
	}

	sess.Lock()
	defer sess.Unlock()
	if err := sess.Reset(ctx); err != nil {
		m.logger.Error("Failed clearing history for deleted session", "sessionId", id, "error", err)
		return err
	}
	m.logger.Info("Deleted session", "sessionId", id)
	return nil
}

func (m *Manager) Count() int {
	m.sessionMutex.RLock()
	defer m.sessionMutex.RUnlock()
	return len(m.sessionMap)
}
