package rag

import (
	"context"
	"fmt"
)

// Retriever provides semantic retrieval over ingested clinic documents.
type Retriever struct {
	embedder    Embedder
	vectorStore VectorStore
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, vectorStore VectorStore) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}

	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
	}, nil
}

// Retrieve embeds a free-text query and performs top-K similarity search.
// Matches are returned in descending score order.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]SearchMatch, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	embeddingRecords, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for query")
	}

	queryVector := embeddingRecords[0].Embedding

	matches, err := r.vectorStore.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search for query: %w", err)
	}

	return matches, nil
}
