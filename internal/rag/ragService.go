package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docassist/internal/adapter/utils"
	"docassist/internal/config"
	"docassist/internal/conversation"
	"docassist/internal/domain/ragmodel"
	"docassist/internal/metrics"
	"docassist/internal/rag/answercache"
	"docassist/internal/rag/embedding"
	"docassist/internal/rag/ingest"
	"docassist/internal/rag/llm"
	"docassist/internal/session"
	"docassist/pkg/logkit"
)

// Service is the public contract of the answer pipeline. Handlers (HTTP or
// MCP) only ever see this; the providers behind it are injected once at
// startup and swapped for mocks in tests.
type Service interface {
	Answer(ctx context.Context, sess *session.Session, question string, topK int) (ragmodel.Answer, error)
	IngestDocument(ctx context.Context, sess *session.Session, path string, displayName string) (ragmodel.Document, int, error)
	IngestText(ctx context.Context, sess *session.Session, name string, text string) (ragmodel.Document, int, error)
}

type service struct {
	llmProvider llm.Provider
	embedder    embedding.Embedder
	cache       answercache.Cache
	logger      *logkit.Logger
}

// NewService wires the pipeline. cache may be nil, which disables the
// semantic answer cache without any branching at the call sites that matter.
func NewService(provider llm.Provider, em embedding.Embedder, cache answercache.Cache) Service {
	return &service{
		llmProvider: provider,
		embedder:    em,
		cache:       cache,
		logger:      logkit.NewLogger("RAG Service"),
	}
}

// Answer runs one question through the full pipeline: embed, cache lookup,
// retrieve, prompt, generate, record. It holds the session lock throughout,
// so a session processes one question at a time.
//
// On any failure the conversation log is left untouched; the caller can
// re-issue the same question against identical history.
func (s *service) Answer(ctx context.Context, sess *session.Session, question string, topK int) (ragmodel.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return ragmodel.Answer{}, ragmodel.ErrEmptyQuestion
	}
	if topK <= 0 {
		topK = config.DefaultTopK
	}

	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sess.Id)

	start := time.Now()
	status := "error"
	defer func() { metrics.CaptureQueryMetrics(status, time.Since(start)) }()

	sess.Lock()
	defer sess.Unlock()

	queryVector, err := s.executeEmbeddingStep(ctx, log, question)
	if err != nil {
		return ragmodel.Answer{}, classifyExternal(err, ragmodel.ErrEmbeddingService)
	}

	grounded := !sess.Index().IsEmpty()

	if cached, found := s.executeCacheCheckStep(ctx, log, queryVector); found {
		answer := ragmodel.Answer{Text: cached, Grounded: grounded, Cached: true}
		if err := s.recordTurn(ctx, sess, question, answer.Text); err != nil {
			return ragmodel.Answer{}, err
		}
		status = "cached"
		return answer, nil
	}

	hits := s.executeSearchStep(log, sess, queryVector, topK)
	if !grounded {
		log.Debug("No documents in session, answering ungrounded")
		metrics.IncrementUngroundedAnswers()
	}

	history, err := sess.Log().Turns(ctx)
	if err != nil {
		return ragmodel.Answer{}, fmt.Errorf("reading conversation history: %w", err)
	}

	prompt := buildPrompt(question, hits, sess.DocumentName, conversation.Window(history, config.HistoryWindowTurns))

	text, err := s.executeLLMStep(ctx, log, prompt)
	if err != nil {
		return ragmodel.Answer{}, classifyExternal(err, ragmodel.ErrCompletionService)
	}

	answer := ragmodel.Answer{
		Text:     text,
		Grounded: grounded,
		Sources:  sourceNames(hits, sess.DocumentName),
	}
	if err := s.recordTurn(ctx, sess, question, text); err != nil {
		return ragmodel.Answer{}, err
	}

	if s.cache != nil && grounded {
		bg := context.WithoutCancel(ctx)
		go func() {
			if err := s.cache.SaveToCache(bg, utils.GetNewUUID(), queryVector, text); err != nil {
				s.logger.Error("Failed to save answer to cache", "error", err)
			}
		}()
	}

	status = "ok"
	return answer, nil
}

func (s *service) IngestDocument(ctx context.Context, sess *session.Session, path string, displayName string) (ragmodel.Document, int, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	res, err := ingest.ProcessDocumentIngestion(ctx, path, displayName, s.embedder)
	if err != nil {
		return ragmodel.Document{}, 0, err
	}
	return s.mergeResult(sess, res)
}

func (s *service) IngestText(ctx context.Context, sess *session.Session, name string, text string) (ragmodel.Document, int, error) {
	res, err := ingest.ProcessTextIngestion(ctx, name, text, s.embedder)
	if err != nil {
		return ragmodel.Document{}, 0, err
	}
	return s.mergeResult(sess, res)
}

func (s *service) mergeResult(sess *session.Session, res ingest.Result) (ragmodel.Document, int, error) {
	sess.Lock()
	defer sess.Unlock()

	if err := sess.MergeIndex(res.Fragment, res.Doc); err != nil {
		return ragmodel.Document{}, 0, err
	}
	metrics.IncrementDocumentsIngested()
	return res.Doc, res.ChunkCount, nil
}

func (s *service) recordTurn(ctx context.Context, sess *session.Session, question string, answer string) error {
	turn := ragmodel.Turn{Question: question, Answer: answer, AskedAt: time.Now()}
	if err := sess.Log().Append(ctx, turn); err != nil {
		return fmt.Errorf("recording conversation turn: %w", err)
	}
	return nil
}

// classifyExternal maps an adapter failure onto the pipeline's sentinels. A
// blown deadline is reported as a timeout whichever service it happened in.
func classifyExternal(err error, sentinel error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ragmodel.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
