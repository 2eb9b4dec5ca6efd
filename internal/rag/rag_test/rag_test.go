package rag_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"docassist/internal/conversation"
	"docassist/internal/domain/ragmodel"
	"docassist/internal/rag"
	"docassist/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	mgr := session.NewManager(func(string) conversation.Log { return conversation.NewMemoryLog() })
	return mgr.Create()
}

func historyLen(t *testing.T, sess *session.Session) int {
	t.Helper()
	sess.Lock()
	defer sess.Unlock()
	n, err := sess.Log().Len(context.Background())
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	return n
}

func TestAnswer_RejectsEmptyQuestion(t *testing.T) {
	svc := rag.NewService(&MockLLM{}, &MockEmbedder{}, nil)
	sess := newTestSession(t)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Answer(context.Background(), sess, q, 0)
		if !errors.Is(err, ragmodel.ErrEmptyQuestion) {
			t.Errorf("Answer(%q) error = %v, want ErrEmptyQuestion", q, err)
		}
	}
	if n := historyLen(t, sess); n != 0 {
		t.Errorf("history length = %d after rejected questions, want 0", n)
	}
}

func TestAnswer_UngroundedWhenNoDocuments(t *testing.T) {
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, sys string, prompt string) (string, error) {
			if strings.Contains(prompt, "Context from the user's documents") {
				t.Error("prompt contains a context block with no documents ingested")
			}
			return "general knowledge answer", nil
		},
	}
	svc := rag.NewService(llm, &MockEmbedder{}, nil)
	sess := newTestSession(t)

	ans, err := svc.Answer(context.Background(), sess, "What is the capital of France?", 0)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Grounded {
		t.Error("answer marked grounded with no documents in the session")
	}
	if len(ans.Sources) != 0 {
		t.Errorf("sources = %v, want none", ans.Sources)
	}
	if n := historyLen(t, sess); n != 1 {
		t.Errorf("history length = %d, want 1", n)
	}
}

func TestAnswer_GroundedFlow(t *testing.T) {
	var seenPrompt string
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, sys string, prompt string) (string, error) {
			seenPrompt = prompt
			return "the sky is blue", nil
		},
	}
	svc := rag.NewService(llm, &MockEmbedder{}, nil)
	sess := newTestSession(t)

	_, count, err := svc.IngestText(context.Background(), sess, "colors.txt", "The sky is blue. Grass is green.")
	if err != nil {
		t.Fatalf("IngestText: %v", err)
	}
	if count != 1 {
		t.Errorf("chunk count = %d, want 1", count)
	}

	ans, err := svc.Answer(context.Background(), sess, "What color is the sky?", 0)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !ans.Grounded {
		t.Error("answer not marked grounded after ingesting a document")
	}
	if len(ans.Sources) != 1 || ans.Sources[0] != "colors.txt" {
		t.Errorf("sources = %v, want [colors.txt]", ans.Sources)
	}
	if !strings.Contains(seenPrompt, "The sky is blue") {
		t.Error("prompt does not include the retrieved chunk text")
	}
	if !strings.Contains(seenPrompt, "Question: What color is the sky?") {
		t.Error("prompt does not end with the question")
	}
	if n := historyLen(t, sess); n != 1 {
		t.Errorf("history length = %d, want 1", n)
	}
}

func TestAnswer_CompletionFailureLeavesHistoryUntouched(t *testing.T) {
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, sys string, prompt string) (string, error) {
			return "", errors.New("provider down")
		},
	}
	svc := rag.NewService(llm, &MockEmbedder{}, nil)
	sess := newTestSession(t)

	_, err := svc.Answer(context.Background(), sess, "hello?", 0)
	if !errors.Is(err, ragmodel.ErrCompletionService) {
		t.Fatalf("error = %v, want ErrCompletionService", err)
	}
	if n := historyLen(t, sess); n != 0 {
		t.Errorf("history length = %d after failed answer, want 0", n)
	}
}

func TestAnswer_TimeoutClassification(t *testing.T) {
	t.Run("Embedding_Timeout", func(t *testing.T) {
		embedder := &MockEmbedder{
			OnGetEmbedding: func(ctx context.Context, query string) ([]float32, error) {
				return nil, fmt.Errorf("embed: %w", context.DeadlineExceeded)
			},
		}
		svc := rag.NewService(&MockLLM{}, embedder, nil)
		sess := newTestSession(t)

		_, err := svc.Answer(context.Background(), sess, "slow embed", 0)
		if !errors.Is(err, ragmodel.ErrTimeout) {
			t.Fatalf("error = %v, want ErrTimeout", err)
		}
		if errors.Is(err, ragmodel.ErrEmbeddingService) {
			t.Error("timeout also reported as an embedding service failure")
		}
		if n := historyLen(t, sess); n != 0 {
			t.Errorf("history length = %d after timed-out answer, want 0", n)
		}
	})

	t.Run("Completion_Timeout", func(t *testing.T) {
		llm := &MockLLM{
			OnGenerate: func(ctx context.Context, sys string, prompt string) (string, error) {
				return "", fmt.Errorf("generate: %w", context.DeadlineExceeded)
			},
		}
		svc := rag.NewService(llm, &MockEmbedder{}, nil)
		sess := newTestSession(t)

		_, err := svc.Answer(context.Background(), sess, "slow generate", 0)
		if !errors.Is(err, ragmodel.ErrTimeout) {
			t.Fatalf("error = %v, want ErrTimeout", err)
		}
		if n := historyLen(t, sess); n != 0 {
			t.Errorf("history length = %d after timed-out answer, want 0", n)
		}
	})
}

func TestAnswer_EmbeddingFailure(t *testing.T) {
	embedder := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, query string) ([]float32, error) {
			return nil, errors.New("quota exhausted")
		},
	}
	svc := rag.NewService(&MockLLM{}, embedder, nil)
	sess := newTestSession(t)

	_, err := svc.Answer(context.Background(), sess, "anything", 0)
	if !errors.Is(err, ragmodel.ErrEmbeddingService) {
		t.Fatalf("error = %v, want ErrEmbeddingService", err)
	}
	if n := historyLen(t, sess); n != 0 {
		t.Errorf("history length = %d after failed answer, want 0", n)
	}
}

func TestAnswer_CacheHitSkipsGeneration(t *testing.T) {
	cache := &MockCache{
		OnGetCachedAnswer: func(ctx context.Context, v []float32) (string, bool, error) {
			return "cached answer", true, nil
		},
	}
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, sys string, prompt string) (string, error) {
			t.Error("LLM called despite a cache hit")
			return "", nil
		},
	}
	svc := rag.NewService(llm, &MockEmbedder{}, cache)
	sess := newTestSession(t)

	ans, err := svc.Answer(context.Background(), sess, "seen this before", 0)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !ans.Cached || ans.Text != "cached answer" {
		t.Errorf("answer = %+v, want cached answer with Cached set", ans)
	}
	if n := historyLen(t, sess); n != 1 {
		t.Errorf("history length = %d, want 1 (cache hits still record a turn)", n)
	}
}

func TestAnswer_CacheFailureIsNotFatal(t *testing.T) {
	cache := &MockCache{
		OnGetCachedAnswer: func(ctx context.Context, v []float32) (string, bool, error) {
			return "", false, errors.New("cache unreachable")
		},
	}
	svc := rag.NewService(&MockLLM{}, &MockEmbedder{}, cache)
	sess := newTestSession(t)

	ans, err := svc.Answer(context.Background(), sess, "still works?", 0)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text != "mocked llm response" {
		t.Errorf("answer text = %q", ans.Text)
	}
}

func TestAnswer_HistoryWindowIsBounded(t *testing.T) {
	var seenPrompt string
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, sys string, prompt string) (string, error) {
			seenPrompt = prompt
			return "ok", nil
		},
	}
	svc := rag.NewService(llm, &MockEmbedder{}, nil)
	sess := newTestSession(t)

	for i := 0; i < 8; i++ {
		if _, err := svc.Answer(context.Background(), sess, fmt.Sprintf("question number %d", i), 0); err != nil {
			t.Fatalf("Answer %d: %v", i, err)
		}
	}

	// The final prompt saw 7 prior turns through a window of 5: turns 0
	// and 1 must have aged out while the recent ones remain.
	if strings.Contains(seenPrompt, "question number 0") || strings.Contains(seenPrompt, "question number 1") {
		t.Error("prompt still contains turns that should have aged out of the window")
	}
	if !strings.Contains(seenPrompt, "question number 6") {
		t.Error("prompt is missing a recent turn")
	}
	if n := historyLen(t, sess); n != 8 {
		t.Errorf("history length = %d, want 8 (the full log is kept, only the prompt window is bounded)", n)
	}
}

func TestAnswer_FollowUpSeesPriorTurn(t *testing.T) {
	var seenPrompt string
	llm := &MockLLM{
		OnGenerate: func(ctx context.Context, sys string, prompt string) (string, error) {
			seenPrompt = prompt
			return "it is a color", nil
		},
	}
	svc := rag.NewService(llm, &MockEmbedder{}, nil)
	sess := newTestSession(t)

	if _, err := svc.Answer(context.Background(), sess, "What color is the sky?", 0); err != nil {
		t.Fatalf("first Answer: %v", err)
	}
	if _, err := svc.Answer(context.Background(), sess, "Why is it that color?", 0); err != nil {
		t.Fatalf("second Answer: %v", err)
	}

	if !strings.Contains(seenPrompt, "User: What color is the sky?") {
		t.Error("follow-up prompt does not include the prior question")
	}
}
