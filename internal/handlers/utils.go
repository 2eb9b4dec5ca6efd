package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"docassist/internal/adapter"
	"docassist/internal/config"
	"docassist/internal/session"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.ToErrorResponse(httpCode, message))
}

// writePipelineError translates a pipeline failure into its HTTP shape. The
// sentinel text is safe to show; wrapped provider detail stays in the logs.
func writePipelineError(w http.ResponseWriter, err error) {
	logRH.Error("Request failed", "error", err)
	WriteErrorResponse(w, adapter.StatusForError(err), err.Error())
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

// requireSession resolves {id} and writes the 404 itself on a miss.
func requireSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := getSessionId(r)
	sess, err := handlerInstance.sessions.Get(id)
	if err != nil {
		logRH.Warn("Unknown session", "sessionId", id)
		WriteErrorResponse(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func getTargetDirectory() (string, error) {
	root, err := os.Getwd()
	if err != nil {
		return "", err
	}

	targetDir := filepath.Join(root, "temporary_data")
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", err
	}
	return targetDir, nil
}

func traceId(r *http.Request) string {
	if v, ok := r.Context().Value(config.TRACE_ID_KEY).(string); ok {
		return v
	}
	return ""
}
