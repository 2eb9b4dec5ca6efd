package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"docassist/internal/conversation"
	"docassist/internal/domain/ragmodel"
	"docassist/internal/rag/vectorindex"
	"docassist/internal/session"
)

func newTestManager() *session.Manager {
	return session.NewManager(func(string) conversation.Log {
		return conversation.NewMemoryLog()
	})
}

func buildFragment(t *testing.T, docId string, n int) *vectorindex.Index {
	t.Helper()
	chunks := make([]ragmodel.Chunk, n)
	vectors := make([][]float32, n)
	for i := range chunks {
		chunks[i] = ragmodel.Chunk{DocId: docId, Seq: i, Text: "chunk"}
		vectors[i] = []float32{1, float32(i)}
	}
	idx, err := vectorindex.Build(chunks, vectors)
	if err != nil {
		t.Fatalf("Build fragment failed: %v", err)
	}
	return idx
}

func TestManager_Lifecycle(t *testing.T) {
	m := newTestManager()

	sess := m.Create()
	if sess.Id == "" {
		t.Fatal("created session has no id")
	}

	got, err := m.Get(sess.Id)
	if err != nil || got != sess {
		t.Fatalf("Get = (%v, %v); want the created session", got, err)
	}

	if _, err := m.Get("ghost"); !errors.Is(err, ragmodel.ErrSessionNotFound) {
		t.Errorf("Get(ghost) err = %v; want ErrSessionNotFound", err)
	}

	if err := m.Delete(context.Background(), sess.Id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(sess.Id); !errors.Is(err, ragmodel.ErrSessionNotFound) {
		t.Errorf("session still reachable after Delete")
	}
	if err := m.Delete(context.Background(), sess.Id); !errors.Is(err, ragmodel.ErrSessionNotFound) {
		t.Errorf("double Delete err = %v; want ErrSessionNotFound", err)
	}
}

func TestSession_MergeAccumulatesDocuments(t *testing.T) {
	m := newTestManager()
	sess := m.Create()

	sess.Lock()
	defer sess.Unlock()

	docs := []ragmodel.Document{
		{Id: "d1", Name: "first.pdf", UploadedAt: time.Now()},
		{Id: "d2", Name: "second.txt", UploadedAt: time.Now().Add(time.Second)},
	}
	if err := sess.MergeIndex(buildFragment(t, "d1", 3), docs[0]); err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	if err := sess.MergeIndex(buildFragment(t, "d2", 2), docs[1]); err != nil {
		t.Fatalf("second merge failed: %v", err)
	}

	if sess.Index().Len() != 5 {
		t.Errorf("index size = %d; want 5", sess.Index().Len())
	}
	if got := sess.Documents(); len(got) != 2 || got[0].Name != "first.pdf" {
		t.Errorf("Documents() = %v; want upload order [first.pdf second.txt]", got)
	}
	if sess.DocumentName("d2") != "second.txt" {
		t.Errorf("DocumentName(d2) = %q", sess.DocumentName("d2"))
	}

	// Re-ingesting d1 replaces, never duplicates.
	if err := sess.MergeIndex(buildFragment(t, "d1", 3), docs[0]); err != nil {
		t.Fatalf("re-merge failed: %v", err)
	}
	if sess.Index().Len() != 5 {
		t.Errorf("index size after re-ingest = %d; want 5", sess.Index().Len())
	}
}

func TestSession_Reset(t *testing.T) {
	m := newTestManager()
	sess := m.Create()
	ctx := context.Background()

	sess.Lock()
	defer sess.Unlock()

	if err := sess.MergeIndex(buildFragment(t, "d1", 2), ragmodel.Document{Id: "d1", Name: "doc"}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if err := sess.Log().Append(ctx, ragmodel.Turn{Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if err := sess.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if !sess.Index().IsEmpty() {
		t.Error("index not empty after Reset")
	}
	if len(sess.Documents()) != 0 {
		t.Error("documents not cleared after Reset")
	}
	if n, _ := sess.Log().Len(ctx); n != 0 {
		t.Errorf("history length after Reset = %d; want 0", n)
	}
}
