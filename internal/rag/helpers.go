package rag

import (
	"context"
	"errors"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain/ragmodel"
	"docassist/internal/metrics"
	"docassist/internal/session"
	"docassist/pkg/logkit"
)

func (s *service) executeEmbeddingStep(ctx context.Context, log *logkit.Logger, question string) ([]float32, error) {
	log.Debug("Answer pipeline", "step", "embedding")

	callCtx, cancel := context.WithTimeout(ctx, config.ExternalCallTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(callCtx, question)
}

// executeCacheCheckStep is best effort: a missing cache or a lookup failure
// both read as a miss.
func (s *service) executeCacheCheckStep(ctx context.Context, log *logkit.Logger, emb []float32) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	log.Debug("Answer pipeline", "step", "cache lookup")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start)) }()

	ans, found, err := s.cache.GetCachedAnswer(ctx, emb)
	if err != nil {
		log.Warn("Cache lookup failed, continuing without it", "error", err)
		return "", false
	}
	return ans, found
}

// executeSearchStep retrieves the top matches from the session index. An
// empty index is not a failure here, it just means an ungrounded answer.
func (s *service) executeSearchStep(log *logkit.Logger, sess *session.Session, emb []float32, topK int) []ragmodel.SearchHit {
	log.Debug("Answer pipeline", "step", "retrieval")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := sess.Index().Search(emb, topK)
	if err != nil {
		if !errors.Is(err, ragmodel.ErrEmptyIndex) {
			log.Error("Index search failed", "error", err)
		}
		return nil
	}
	return hits
}

func (s *service) executeLLMStep(ctx context.Context, log *logkit.Logger, prompt string) (string, error) {
	log.Debug("Answer pipeline", "step", "generation")

	callCtx, cancel := context.WithTimeout(ctx, config.ExternalCallTimeout)
	defer cancel()

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.llmProvider.Generate(callCtx, config.SystemInstruction, prompt)
}

// sourceNames lists the documents behind the hits, deduplicated, in score
// order.
func sourceNames(hits []ragmodel.SearchHit, nameOf func(string) string) []string {
	if len(hits) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(hits))
	var names []string
	for _, h := range hits {
		name := nameOf(h.Chunk.DocId)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
