package rag

import (
	"context"
	"fmt"
	"strings"
)

// IndexOptions provides configuration for document ingestion.
type IndexOptions struct {
	// BatchSize determines how many chunks to embed per API call.
	BatchSize int
}

// DefaultIndexOptions returns sensible defaults for ingestion.
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize: 100,
	}
}

// SplitChunks splits raw document text into chunks on blank lines, trimming
// whitespace and dropping empty sections.
func SplitChunks(text string) []string {
	sections := strings.Split(text, "\n\n")
	chunks := make([]string, 0, len(sections))
	for _, s := range sections {
		s = strings.TrimSpace(s)
		if s != "" {
			chunks = append(chunks, s)
		}
	}
	return chunks
}

// IndexChunks replaces the vector store contents with the given chunks.
// The store is cleared first, then chunks are embedded and inserted in
// batches with ids chunk_0, chunk_1, ... matching their source order.
// Returns the number of chunks indexed.
func IndexChunks(
	ctx context.Context,
	chunks []string,
	embedder Embedder,
	vectorStore VectorStore,
	opts IndexOptions,
) (int, error) {
	if embedder == nil {
		return 0, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return 0, fmt.Errorf("vector store cannot be nil")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	if err := vectorStore.DeleteAll(ctx); err != nil {
		return 0, fmt.Errorf("failed to clear existing chunks: %w", err)
	}

	if len(chunks) == 0 {
		return 0, nil
	}

	for batchStart := 0; batchStart < len(chunks); batchStart += opts.BatchSize {
		batchEnd := batchStart + opts.BatchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}

		batch := chunks[batchStart:batchEnd]

		embeddingRecords, err := embedder.Embed(ctx, batch)
		if err != nil {
			return 0, fmt.Errorf("failed to embed batch starting at %d: %w", batchStart, err)
		}

		records := make([]ChunkRecord, len(batch))
		for i := range batch {
			records[i] = ChunkRecord{
				ChunkID:   fmt.Sprintf("chunk_%d", batchStart+i),
				Text:      embeddingRecords[i].Text,
				Embedding: embeddingRecords[i].Embedding,
			}
		}

		if err := vectorStore.Insert(ctx, records); err != nil {
			return 0, fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}

		if err := vectorStore.Flush(ctx); err != nil {
			return 0, fmt.Errorf("failed to flush batch starting at %d: %w", batchStart, err)
		}
	}

	return len(chunks), nil
}
