package handlers

import (
	"sync"

	"docassist/internal/rag"
	"docassist/internal/session"
	"docassist/pkg/logkit"
)

var (
	handlerInstance *SessionHandler //private singleton
	once            sync.Once
	logRH           *logkit.Logger
)

type SessionHandler struct {
	sessions *session.Manager
	pipeline rag.Service
}

// InitSessionHandler wires the handler package once at startup. Handlers
// are plain functions (the router wants http.HandlerFunc), so the
// dependencies live here.
func InitSessionHandler(sessions *session.Manager, pipeline rag.Service) {
	once.Do(func() {
		handlerInstance = &SessionHandler{sessions: sessions, pipeline: pipeline}
		logRH = logkit.NewLogger("RequestHandler")
		logRH.Info("Starting session handler")
	})
}
