package adapter

import (
	"errors"
	"net/http"

	"docassist/internal/api"
	"docassist/internal/domain/ragmodel"
	"docassist/internal/session"
)

func ToSessionResponse(sess *session.Session) api.SessionResponse {
	return api.SessionResponse{
		SessionId: sess.Id,
		CreatedAt: sess.CreatedTime,
	}
}

func ToChatResponse(question string, ans ragmodel.Answer) api.ChatResponse {
	return api.ChatResponse{
		Question: question,
		Answer:   ans.Text,
		Grounded: ans.Grounded,
		Cached:   ans.Cached,
		Sources:  ans.Sources,
	}
}

func ToIngestResponse(doc ragmodel.Document, chunkCount int) api.IngestResponse {
	return api.IngestResponse{
		Document: api.DocumentResponse{
			DocId:       doc.Id,
			DocName:     doc.Name,
			ContentType: string(doc.ContentType),
			UploadedAt:  doc.UploadedAt,
		},
		ChunkCount: chunkCount,
	}
}

func ToHistoryResponse(sessionId string, turns []ragmodel.Turn) api.HistoryResponse {
	out := api.HistoryResponse{
		SessionId: sessionId,
		Turns:     make([]api.TurnResponse, 0, len(turns)),
	}
	for _, t := range turns {
		out.Turns = append(out.Turns, api.TurnResponse{
			Ordinal:  t.Ordinal,
			Question: t.Question,
			Answer:   t.Answer,
			AskedAt:  t.AskedAt,
		})
	}
	return out
}

func ToErrorResponse(code int, message string) api.ErrorResponse {
	return api.ErrorResponse{Code: code, Message: message}
}

// StatusForError maps pipeline sentinels onto HTTP status codes. Anything
// unrecognized is a 500.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ragmodel.ErrEmptyQuestion),
		errors.Is(err, ragmodel.ErrInvalidConfig),
		errors.Is(err, ragmodel.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ragmodel.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ragmodel.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ragmodel.ErrEmbeddingService),
		errors.Is(err, ragmodel.ErrCompletionService):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
