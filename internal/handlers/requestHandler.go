package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"docassist/internal/adapter"
	"docassist/internal/adapter/utils"
	"docassist/internal/api"
	"docassist/internal/config"
	"docassist/internal/metrics"
)

func getSessionId(r *http.Request) string {
	return utils.GetChiURLParam(r, "id")
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// CreateSessionHandler starts a fresh, empty session and returns its id.
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess := handlerInstance.sessions.Create()
	metrics.IncrementActiveSessionCount()
	writeJsonResponse(w, http.StatusCreated, adapter.ToSessionResponse(sess))
}

// DeleteSessionHandler ends a session; its documents and history go with it.
func DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if err := handlerInstance.sessions.Delete(r.Context(), getSessionId(r)); err != nil {
		writePipelineError(w, err)
		return
	}
	metrics.DecrementActiveSessionCount()
	w.WriteHeader(http.StatusNoContent)
}

// ResetSessionHandler keeps the session id but drops its documents and
// conversation.
func ResetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	sess.Lock()
	err := sess.Reset(r.Context())
	sess.Unlock()
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(sess))
}

// ChatHandler answers one question against the session's documents and
// history. This is synchronous: the response carries the answer itself.
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", "remoteAddr", request.RemoteAddr)
		return
	}
	sess, ok := requireSession(w, request)
	if !ok {
		return
	}

	var requestData api.ChatRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader", "error", err)
		}
	}(request.Body)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.Warn("Bad Chat Request", "error", err, "traceId", traceId(request))
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}

	answer, err := handlerInstance.pipeline.Answer(request.Context(), sess, requestData.Message, requestData.TopK)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(requestData.Message, answer))
}

// PostIngestHandler receives a file via multipart/form-data, extracts and
// indexes it into the session, and reports the chunk count. The upload is
// staged in a temp file only as long as extraction needs it.
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remoteAddr", r.RemoteAddr)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	docName := r.FormValue("document_name")
	if docName == "" {
		docName = fileMetadata.Filename
	}

	targetDir, err := getTargetDirectory()
	if err != nil {
		logRH.Error("Couldn't get target directory", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	tempFilePath := filepath.Join(targetDir,
		fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename)))
	destinationFileWriter, err := os.Create(tempFilePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer os.Remove(tempFilePath)

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		destinationFileWriter.Close()
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}
	destinationFileWriter.Close()

	doc, chunkCount, err := handlerInstance.pipeline.IngestDocument(r.Context(), sess, tempFilePath, docName)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToIngestResponse(doc, chunkCount))
}

// PostIngestTextHandler indexes raw text sent in the request body, for
// clients that already have the content extracted.
func PostIngestTextHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var requestData api.IngestTextRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.DocumentName == "" || requestData.Text == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "document_name and text are required")
		return
	}

	doc, chunkCount, err := handlerInstance.pipeline.IngestText(r.Context(), sess, requestData.DocumentName, requestData.Text)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, adapter.ToIngestResponse(doc, chunkCount))
}

// GetHistoryHandler returns the session's full conversation in order.
func GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	sess.Lock()
	turns, err := sess.Log().Turns(r.Context())
	sess.Unlock()
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(sess.Id, turns))
}

// DeleteHistoryHandler clears the conversation but keeps the indexed
// documents.
func DeleteHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	sess.Lock()
	err := sess.Log().Clear(r.Context())
	sess.Unlock()
	if err != nil {
		writePipelineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
