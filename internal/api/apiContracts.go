package api

import "time"

// Wire types for the HTTP surface. Domain types stay internal; these are the
// shapes clients actually see.

type SessionResponse struct {
	SessionId string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Grounded bool     `json:"grounded"`
	Cached   bool     `json:"cached,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

type DocumentResponse struct {
	DocId       string    `json:"doc_id"`
	DocName     string    `json:"doc_name"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type IngestResponse struct {
	Document   DocumentResponse `json:"document"`
	ChunkCount int              `json:"chunk_count"`
}

type TurnResponse struct {
	Ordinal  int       `json:"ordinal"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

type HistoryResponse struct {
	SessionId string         `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"question is empty"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	TopK    int    `json:"top_k,omitempty"`
}

type IngestTextRequest struct {
	DocumentName string `json:"document_name" validate:"required"`
	Text         string `json:"text" validate:"required"`
}
