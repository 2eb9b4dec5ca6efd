package answercache

import "context"

// Cache is an optional semantic answer cache keyed by question embedding.
// The pipeline treats a nil Cache as a permanent miss, and a cache failure
// is never fatal: the query just proceeds to retrieval and generation.
type Cache interface {
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
