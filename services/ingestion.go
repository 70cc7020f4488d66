package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"modular-rag-service/internal/logger"
	"modular-rag-service/internal/telemetry"
	"modular-rag-service/models"

	"github.com/google/uuid"
)

// Embedder turns chunk text into a fixed-dimension vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// ChunkMetaStore appends chunk metadata rows.
type ChunkMetaStore interface {
	InsertChunkMeta(ctx context.Context, meta *models.FileChunkMeta) error
}

// IngestionService drives chunk -> embed -> vector upsert -> metadata row
// for one uploaded document. Chunks are processed sequentially and
// independently: a failure on one chunk is recorded in its result entry and
// never undoes the writes of earlier chunks.
type IngestionService struct {
	chunker  *ChunkingService
	embedder Embedder
	vectors  VectorStore
	meta     ChunkMetaStore
	metrics  *telemetry.Metrics

	retries     int
	backoffBase time.Duration
}

// NewIngestionService creates an ingestion pipeline over the given
// collaborators.
func NewIngestionService(chunker *ChunkingService, embedder Embedder, vectors VectorStore, meta ChunkMetaStore, metrics *telemetry.Metrics) *IngestionService {
	return &IngestionService{
		chunker:     chunker,
		embedder:    embedder,
		vectors:     vectors,
		meta:        meta,
		metrics:     metrics,
		retries:     2,
		backoffBase: 500 * time.Millisecond,
	}
}

// Ingest chunks rawText and stores every chunk, returning one outcome entry
// per chunk in index order. Caller-input problems (empty text, bad strategy
// or size) are returned as an error before any side effect.
func (is *IngestionService) Ingest(ctx context.Context, fileName, rawText, strategy string, chunkSize int) ([]models.ChunkResult, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, fmt.Errorf("document %q has no extractable text", fileName)
	}

	chunks, err := is.chunker.Chunk(rawText, strategy, chunkSize)
	if err != nil {
		return nil, err
	}

	results := make([]models.ChunkResult, 0, len(chunks))
	for _, chunk := range chunks {
		result := models.ChunkResult{ChunkID: chunk.Index}
		if err := is.storeChunk(ctx, fileName, chunk, &result); err != nil {
			logger.Error("chunk store failed", "file", fileName, "chunk", chunk.Index, "error", err)
			result.Error = err.Error()
		}
		results = append(results, result)
	}

	logger.Info("document ingested", "file", fileName, "strategy", strategy, "chunks", len(results))
	return results, nil
}

// storeChunk writes the vector first and the metadata row second, so a row
// never references a vector that was not upserted. The converse window (a
// vector with no row, if the process dies in between) is an accepted,
// recoverable inconsistency.
func (is *IngestionService) storeChunk(ctx context.Context, fileName string, chunk models.TextChunk, result *models.ChunkResult) error {
	var vector []float32
	if err := is.withRetry(ctx, func() error {
		var err error
		vector, err = is.embedder.EmbedText(ctx, chunk.Text)
		return err
	}); err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if is.metrics != nil {
		is.metrics.EmbeddingsGenerated.Add(ctx, 1)
	}

	embeddingID := chunkEmbeddingID(fileName, chunk.Index)
	payload := VectorPayload{FileName: fileName, ChunkID: chunk.Index, Text: chunk.Text}
	if err := is.withRetry(ctx, func() error {
		return is.vectors.Upsert(ctx, embeddingID, vector, payload)
	}); err != nil {
		return fmt.Errorf("vector upsert failed: %w", err)
	}

	meta := &models.FileChunkMeta{
		FileName:    fileName,
		ChunkID:     chunk.Index,
		ChunkText:   chunk.Text,
		EmbeddingID: embeddingID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := is.withRetry(ctx, func() error {
		return is.meta.InsertChunkMeta(ctx, meta)
	}); err != nil {
		return fmt.Errorf("metadata insert failed: %w", err)
	}

	if is.metrics != nil {
		is.metrics.ChunksIngested.Add(ctx, 1)
	}
	result.EmbeddingID = embeddingID
	return nil
}

// chunkEmbeddingID derives a stable vector id from the document name and
// chunk index, so re-ingesting the same document re-upserts instead of
// duplicating vectors.
func chunkEmbeddingID(fileName string, chunkID int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", fileName, chunkID))).String()
}

func (is *IngestionService) withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 0; attempt <= is.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = op(); lastErr == nil {
			return nil
		}
		if attempt < is.retries {
			time.Sleep(time.Duration(1<<attempt) * is.backoffBase)
		}
	}
	return lastErr
}
