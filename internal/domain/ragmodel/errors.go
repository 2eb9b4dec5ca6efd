package ragmodel

import "errors"

// Sentinel errors for the retrieval pipeline. Callers match with errors.Is;
// adapters wrap infrastructure failures around these so the transport layer
// never has to know which provider was behind a failure.
var (
	// ErrInvalidConfig indicates a programmer error: a bad chunk
	// size/overlap combination, or a chunk/vector count mismatch when
	// building an index. Never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDimensionMismatch indicates incompatible embedding vectors, either
	// within one batch or between two indexes being merged.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyIndex indicates a search against an index with no entries.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrEmptyQuestion indicates a question that is blank after trimming.
	ErrEmptyQuestion = errors.New("question is empty")

	// ErrEmbeddingService indicates the hosted embedding call failed.
	// Surfaced once, not retried; the user re-issues the request.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrCompletionService indicates the hosted completion call failed.
	// Covers auth failures, rate limits and network errors alike.
	ErrCompletionService = errors.New("completion service failure")

	// ErrTimeout indicates an external call exceeded the configured budget.
	ErrTimeout = errors.New("external call timed out")

	// ErrSessionNotFound indicates an unknown or already-ended session id.
	ErrSessionNotFound = errors.New("session not found")
)
