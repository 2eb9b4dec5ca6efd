package vectorindex

import (
	"fmt"
	"math"
	"sort"

	"docassist/internal/domain/ragmodel"
)

// Index is an in-memory nearest-neighbour index over (chunk, embedding)
// pairs, searched by brute-force cosine similarity. Entries are identified
// by (DocId, Seq); the index never holds two embeddings for one logical
// chunk. Build and Merge return fresh indexes and leave their inputs alone,
// so the caller decides when a session's view of the world changes.
type Index struct {
	dim     int
	entries []entry
}

type entry struct {
	chunk ragmodel.Chunk
	// L2-normalized at insert so search is a plain dot product.
	vec []float32
}

// Build pairs chunks with their embeddings into a new index.
func Build(chunks []ragmodel.Chunk, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("%w: got %d chunks but %d vectors", ragmodel.ErrInvalidConfig, len(chunks), len(vectors))
	}

	idx := &Index{}
	for i, c := range chunks {
		if idx.dim == 0 {
			idx.dim = len(vectors[i])
		}
		if len(vectors[i]) != idx.dim || idx.dim == 0 {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, index has %d",
				ragmodel.ErrDimensionMismatch, i, len(vectors[i]), idx.dim)
		}
		idx.entries = append(idx.entries, entry{chunk: c, vec: normalize(vectors[i])})
	}

	idx.dedupe()
	idx.sortEntries()
	return idx, nil
}

// Merge unions two indexes into a new one. A document present in both keeps
// only b's chunk set: re-ingesting a document replaces its prior entries
// instead of duplicating them.
func Merge(a, b *Index) (*Index, error) {
	if a == nil || len(a.entries) == 0 {
		return clone(b), nil
	}
	if b == nil || len(b.entries) == 0 {
		return clone(a), nil
	}
	if a.dim != b.dim {
		return nil, fmt.Errorf("%w: cannot merge dimension %d into %d", ragmodel.ErrDimensionMismatch, b.dim, a.dim)
	}

	replaced := make(map[string]bool)
	for _, e := range b.entries {
		replaced[e.chunk.DocId] = true
	}

	merged := &Index{dim: a.dim}
	for _, e := range a.entries {
		if !replaced[e.chunk.DocId] {
			merged.entries = append(merged.entries, e)
		}
	}
	merged.entries = append(merged.entries, b.entries...)
	merged.sortEntries()
	return merged, nil
}

// Search returns the k entries most similar to query, descending by score.
// Ties are broken ascending by (DocId, Seq) so results are reproducible.
// k is clamped to the index size.
func (idx *Index) Search(query []float32, k int) ([]ragmodel.SearchHit, error) {
	if idx == nil || len(idx.entries) == 0 {
		return nil, ragmodel.ErrEmptyIndex
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k=%d", ragmodel.ErrInvalidConfig, k)
	}
	if len(query) != idx.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			ragmodel.ErrDimensionMismatch, len(query), idx.dim)
	}

	q := normalize(query)
	hits := make([]ragmodel.SearchHit, len(idx.entries))
	for i, e := range idx.entries {
		hits[i] = ragmodel.SearchHit{Chunk: e.chunk, Score: dot(q, e.vec)}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Chunk.DocId != hits[j].Chunk.DocId {
			return hits[i].Chunk.DocId < hits[j].Chunk.DocId
		}
		return hits[i].Chunk.Seq < hits[j].Chunk.Seq
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

func (idx *Index) IsEmpty() bool {
	return idx.Len() == 0
}

// Dimension reports the embedding width, 0 for an empty index.
func (idx *Index) Dimension() int {
	if idx == nil {
		return 0
	}
	return idx.dim
}

// dedupe keeps the last occurrence of each (DocId, Seq).
func (idx *Index) dedupe() {
	seen := make(map[string]map[int]int, 4)
	kept := idx.entries[:0]
	for _, e := range idx.entries {
		byDoc, ok := seen[e.chunk.DocId]
		if !ok {
			byDoc = make(map[int]int)
			seen[e.chunk.DocId] = byDoc
		}
		if pos, dup := byDoc[e.chunk.Seq]; dup {
			kept[pos] = e
			continue
		}
		byDoc[e.chunk.Seq] = len(kept)
		kept = append(kept, e)
	}
	idx.entries = kept
}

func (idx *Index) sortEntries() {
	sort.Slice(idx.entries, func(i, j int) bool {
		if idx.entries[i].chunk.DocId != idx.entries[j].chunk.DocId {
			return idx.entries[i].chunk.DocId < idx.entries[j].chunk.DocId
		}
		return idx.entries[i].chunk.Seq < idx.entries[j].chunk.Seq
	})
}

func clone(src *Index) *Index {
	if src == nil {
		return &Index{}
	}
	dst := &Index{dim: src.dim, entries: make([]entry, len(src.entries))}
	copy(dst.entries, src.entries)
	return dst
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		out := make([]float32, len(v))
		return out
	}
	norm := float32(math.Sqrt(sum))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
