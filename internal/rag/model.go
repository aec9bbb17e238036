package rag

import "context"

// ChunkRecord is one ingested document chunk with its embedding vector.
// Chunks are immutable once ingested; the query path only reads them.
type ChunkRecord struct {
	ChunkID   string    `json:"chunk_id"`
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// SearchMatch is a retrieved chunk with its similarity score. Search results
// carry matches in descending score order; matches are ephemeral, produced
// per request and never persisted.
type SearchMatch struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// VectorStore defines the interface for document chunk storage and
// similarity search.
type VectorStore interface {
	// Insert adds chunk records in a single batch operation.
	Insert(ctx context.Context, records []ChunkRecord) error

	// Flush ensures all pending data is persisted.
	Flush(ctx context.Context) error

	// Search performs top-K similarity search and returns matches with
	// scores in descending order.
	Search(ctx context.Context, queryVector []float32, topK int) ([]SearchMatch, error)

	// DeleteAll removes every chunk from the collection. Ingestion runs
	// delete-all then re-upsert so the store always mirrors the source file.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int64, error)

	// Close releases resources and closes connections.
	Close() error
}
