package ragmodel

import "time"

// Document is one uploaded source of text. It is owned by the session that
// ingested it and disappears with that session.
type Document struct {
	Id          string    `json:"doc_id"`
	Name        string    `json:"doc_name"`
	ContentType DocType   `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Chunk is a bounded contiguous span of a document's text, the unit of
// retrieval. Start/End are byte offsets into the parent text; consecutive
// chunks of one document overlap by the configured overlap length.
type Chunk struct {
	DocId string `json:"doc_id"`
	Seq   int    `json:"seq"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// SearchHit is a retrieved chunk with its similarity score.
type SearchHit struct {
	Chunk Chunk   `json:"chunk"`
	Score float32 `json:"score"`
}

// Turn is one question/answer exchange. Ordinal is the turn's position in
// the session's append-only log, starting at 0.
type Turn struct {
	Ordinal  int       `json:"ordinal"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}

// Answer is the pipeline's result for a single question.
//
// Grounded reports whether retrieved document context was included in the
// prompt. An ungrounded answer is not an error: a session with no documents
// still answers from the model's general capability, it just says so here
// instead of pretending it had sources.
type Answer struct {
	Text     string   `json:"text"`
	Grounded bool     `json:"grounded"`
	Cached   bool     `json:"cached,omitempty"`
	Sources  []string `json:"sources,omitempty"`
}

type DocType string

const (
	PDF     DocType = "PDF"
	DOCX    DocType = "DOCX"
	RawText DocType = "TEXT"
	ERR     DocType = "ERROR"
)
