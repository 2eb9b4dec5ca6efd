package vectorindex

import (
	"errors"
	"testing"

	"docassist/internal/domain/ragmodel"
)

func mkChunks(docId string, n int) []ragmodel.Chunk {
	chunks := make([]ragmodel.Chunk, n)
	for i := range chunks {
		chunks[i] = ragmodel.Chunk{DocId: docId, Seq: i, Text: docId + "-chunk"}
	}
	return chunks
}

func TestBuild_Validation(t *testing.T) {
	t.Run("Count_Mismatch", func(t *testing.T) {
		_, err := Build(mkChunks("d1", 2), [][]float32{{1, 0}})
		if !errors.Is(err, ragmodel.ErrInvalidConfig) {
			t.Errorf("err = %v; want ErrInvalidConfig", err)
		}
	})

	t.Run("Ragged_Dimensions", func(t *testing.T) {
		_, err := Build(mkChunks("d1", 2), [][]float32{{1, 0}, {1, 0, 0}})
		if !errors.Is(err, ragmodel.ErrDimensionMismatch) {
			t.Errorf("err = %v; want ErrDimensionMismatch", err)
		}
	})

	t.Run("Empty_Vector", func(t *testing.T) {
		_, err := Build(mkChunks("d1", 1), [][]float32{{}})
		if !errors.Is(err, ragmodel.ErrDimensionMismatch) {
			t.Errorf("err = %v; want ErrDimensionMismatch", err)
		}
	})
}

func TestSearch_OrderingAndClamping(t *testing.T) {
	// Axis-aligned vectors make the cosine scores obvious.
	chunks := []ragmodel.Chunk{
		{DocId: "d1", Seq: 0, Text: "north"},
		{DocId: "d1", Seq: 1, Text: "east"},
		{DocId: "d2", Seq: 0, Text: "north-east"},
	}
	vectors := [][]float32{
		{0, 1},
		{1, 0},
		{1, 1},
	}

	idx, err := Build(chunks, vectors)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hits, err := idx.Search([]float32{0, 1}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("got %d hits; want 3", len(hits))
	}

	if hits[0].Chunk.Text != "north" {
		t.Errorf("top hit = %q; want north", hits[0].Chunk.Text)
	}
	if hits[1].Chunk.Text != "north-east" {
		t.Errorf("second hit = %q; want north-east", hits[1].Chunk.Text)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not descending at position %d", i)
		}
	}

	// k beyond the index size returns every entry exactly once.
	hits, err = idx.Search([]float32{0, 1}, 50)
	if err != nil {
		t.Fatalf("Search with large k failed: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits with k=50; want all 3", len(hits))
	}
	seen := make(map[string]bool)
	for _, h := range hits {
		key := h.Chunk.DocId + "/" + h.Chunk.Text
		if seen[key] {
			t.Errorf("duplicate hit %s", key)
		}
		seen[key] = true
	}
}

func TestSearch_DeterministicTieBreak(t *testing.T) {
	// Identical vectors: every score ties, so order must fall back to
	// ascending (doc id, seq).
	chunks := []ragmodel.Chunk{
		{DocId: "db", Seq: 0},
		{DocId: "da", Seq: 1},
		{DocId: "da", Seq: 0},
	}
	same := []float32{1, 1}
	idx, err := Build(chunks, [][]float32{same, same, same})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	hits, err := idx.Search([]float32{1, 1}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := []struct {
		doc string
		seq int
	}{{"da", 0}, {"da", 1}, {"db", 0}}
	for i, w := range want {
		if hits[i].Chunk.DocId != w.doc || hits[i].Chunk.Seq != w.seq {
			t.Errorf("hit %d = (%s, %d); want (%s, %d)",
				i, hits[i].Chunk.DocId, hits[i].Chunk.Seq, w.doc, w.seq)
		}
	}
}

func TestSearch_ErrorCases(t *testing.T) {
	empty := &Index{}
	if _, err := empty.Search([]float32{1}, 1); !errors.Is(err, ragmodel.ErrEmptyIndex) {
		t.Errorf("empty index err = %v; want ErrEmptyIndex", err)
	}

	idx, _ := Build(mkChunks("d1", 1), [][]float32{{1, 0}})
	if _, err := idx.Search([]float32{1, 0, 0}, 1); !errors.Is(err, ragmodel.ErrDimensionMismatch) {
		t.Errorf("dim mismatch err = %v; want ErrDimensionMismatch", err)
	}
	if _, err := idx.Search([]float32{1, 0}, 0); !errors.Is(err, ragmodel.ErrInvalidConfig) {
		t.Errorf("k=0 err = %v; want ErrInvalidConfig", err)
	}
}

func TestMerge_UnionAndReplace(t *testing.T) {
	a, _ := Build(mkChunks("d1", 3), [][]float32{{1, 0}, {0, 1}, {1, 1}})
	b, _ := Build(mkChunks("d2", 2), [][]float32{{1, 0}, {0, 1}})

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Len() != a.Len()+b.Len() {
		t.Errorf("merged size = %d; want %d", merged.Len(), a.Len()+b.Len())
	}
	if a.Len() != 3 || b.Len() != 2 {
		t.Errorf("Merge mutated its inputs: a=%d b=%d", a.Len(), b.Len())
	}

	// Re-ingesting d1 replaces the prior entries, never duplicates them.
	d1Again, _ := Build(mkChunks("d1", 2), [][]float32{{0, 1}, {1, 0}})
	remerged, err := Merge(merged, d1Again)
	if err != nil {
		t.Fatalf("re-merge failed: %v", err)
	}
	if remerged.Len() != 2+b.Len() {
		t.Errorf("size after re-ingest = %d; want %d", remerged.Len(), 2+b.Len())
	}

	hits, err := remerged.Search([]float32{1, 0}, remerged.Len())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	countD1 := 0
	for _, h := range hits {
		if h.Chunk.DocId == "d1" {
			countD1++
		}
	}
	if countD1 != 2 {
		t.Errorf("d1 entries after replace = %d; want 2", countD1)
	}
}

func TestMerge_DimensionMismatch(t *testing.T) {
	a, _ := Build(mkChunks("d1", 1), [][]float32{{1, 0}})
	b, _ := Build(mkChunks("d2", 1), [][]float32{{1, 0, 0}})

	if _, err := Merge(a, b); !errors.Is(err, ragmodel.ErrDimensionMismatch) {
		t.Errorf("err = %v; want ErrDimensionMismatch", err)
	}
}

func TestMerge_EmptySides(t *testing.T) {
	a, _ := Build(mkChunks("d1", 2), [][]float32{{1, 0}, {0, 1}})

	merged, err := Merge(nil, a)
	if err != nil || merged.Len() != 2 {
		t.Errorf("Merge(nil, a) = (%d, %v); want (2, nil)", merged.Len(), err)
	}
	merged, err = Merge(a, &Index{})
	if err != nil || merged.Len() != 2 {
		t.Errorf("Merge(a, empty) = (%d, %v); want (2, nil)", merged.Len(), err)
	}
}

func TestBuild_DuplicateChunkIdentity(t *testing.T) {
	chunks := []ragmodel.Chunk{
		{DocId: "d1", Seq: 0, Text: "old"},
		{DocId: "d1", Seq: 0, Text: "new"},
	}
	idx, err := Build(chunks, [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Len() != 1 {
		t.Fatalf("index holds %d entries for one chunk identity; want 1", idx.Len())
	}

	hits, _ := idx.Search([]float32{0, 1}, 1)
	if hits[0].Chunk.Text != "new" {
		t.Errorf("kept %q; want the later entry to win", hits[0].Chunk.Text)
	}
}
