package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"docassist/internal/conversation"
	"docassist/internal/domain/ragmodel"
	"docassist/internal/rag/vectorindex"
)

// Session owns everything one user accumulates: the merged vector index
// over their uploaded documents, the document metadata, and the
// conversation log. Sessions are fully isolated from each other.
//
// One operation (ingest or query) runs at a time per session. Callers take
// Lock for the whole operation; the accessor methods assume it is held.
type Session struct {
	Id          string
	CreatedTime time.Time

	mu    sync.Mutex
	index *vectorindex.Index
	docs  map[string]ragmodel.Document
	log   conversation.Log
}

func newSession(id string, log conversation.Log) *Session {
	return &Session{
		Id:          id,
		CreatedTime: time.Now(),
		docs:        make(map[string]ragmodel.Document),
		log:         log,
	}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) Index() *vectorindex.Index {
	return s.index
}

func (s *Session) Log() conversation.Log {
	return s.log
}

// MergeIndex folds a freshly built document fragment into the session
// index and records the document. Re-ingesting a document id replaces its
// prior entries (index merge semantics handle the de-duplication).
func (s *Session) MergeIndex(fragment *vectorindex.Index, doc ragmodel.Document) error {
	merged, err := vectorindex.Merge(s.index, fragment)
	if err != nil {
		return err
	}
	s.index = merged
	s.docs[doc.Id] = doc
	return nil
}

func (s *Session) Documents() []ragmodel.Document {
	out := make([]ragmodel.Document, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out
}

func (s *Session) DocumentName(docId string) string {
	if d, ok := s.docs[docId]; ok {
		return d.Name
	}
	return docId
}

// Reset drops the indexed documents and clears the conversation, returning
// the session to its freshly created state.
func (s *Session) Reset(ctx context.Context) error {
	s.index = nil
	s.docs = make(map[string]ragmodel.Document)
	return s.log.Clear(ctx)
}
