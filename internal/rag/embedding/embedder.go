package embedding

import "context"

// Embedder maps text to a fixed-length vector. One embedder serves a whole
// session: document chunks and queries must share an embedding space, and
// the index will reject what it can detect of a mid-session switch.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
