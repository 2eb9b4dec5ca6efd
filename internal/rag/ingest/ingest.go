package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"docassist/internal/config"
	"docassist/internal/domain/ragmodel"
	"docassist/internal/rag/chunker"
	"docassist/internal/rag/embedding"
	"docassist/internal/rag/vectorindex"
	"docassist/pkg/logkit"
)

var logger = logkit.NewLogger("Document Ingestion")

// Result is a fully embedded document, ready to merge into a session
// index. The fragment is standalone: merging it is the caller's move.
type Result struct {
	Doc        ragmodel.Document
	Fragment   *vectorindex.Index
	ChunkCount int
}

// ProcessDocumentIngestion extracts the text of one uploaded file, chunks
// it and embeds the chunks. The document id is the source filename, so
// uploading the same file again replaces it on merge instead of piling up
// duplicates.
func ProcessDocumentIngestion(ctx context.Context, path string, displayName string, e embedding.Embedder) (Result, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "filename", displayName)

	docType := getDocType(path)
	if docType == ragmodel.ERR {
		return Result{}, fmt.Errorf("cannot determine document type for %q", displayName)
	}

	text, err := extractText(path, docType)
	if err != nil {
		return Result{}, err
	}
	log.Debug("Extracted document text", "bytes", len(text))

	res, err := buildFragment(ctx, displayName, text, docType, e)
	if err != nil {
		return Result{}, err
	}
	log.Debug("Ingested document", "chunks", res.ChunkCount)
	return res, nil
}

// ProcessTextIngestion indexes already-extracted text, e.g. a built-in
// sample corpus or a pasted snippet.
func ProcessTextIngestion(ctx context.Context, name string, text string, e embedding.Embedder) (Result, error) {
	return buildFragment(ctx, name, text, ragmodel.RawText, e)
}

func buildFragment(ctx context.Context, docId string, text string, docType ragmodel.DocType, e embedding.Embedder) (Result, error) {
	chunks, err := chunker.Split(docId, text, config.DefaultChunkSize, config.DefaultChunkOverlap)
	if err != nil {
		return Result{}, err
	}
	if len(chunks) == 0 {
		return Result{}, errors.New("document contains no text")
	}

	vectors, err := batchEmbed(ctx, chunks, e)
	if err != nil {
		return Result{}, err
	}

	fragment, err := vectorindex.Build(chunks, vectors)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Doc: ragmodel.Document{
			Id:          docId,
			Name:        docId,
			ContentType: docType,
			UploadedAt:  time.Now(),
		},
		Fragment:   fragment,
		ChunkCount: len(chunks),
	}, nil
}

func batchEmbed(ctx context.Context, chunks []ragmodel.Chunk, embedder embedding.Embedder) ([][]float32, error) {
	batchSize := config.EmbeddingBatchSize

	var vectors [][]float32
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-i)
		for _, c := range chunks[i:end] {
			texts = append(texts, c.Text)
		}

		batch, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ragmodel.ErrEmbeddingService, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: embedder returned %d vectors for %d chunks",
				ragmodel.ErrEmbeddingService, len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}
