package rag

import (
	"context"
	"fmt"
	"testing"
)

// mockEmbedder implements Embedder interface for testing
type mockEmbedder struct {
	embedFunc func(ctx context.Context, texts []string) ([]EmbeddingRecord, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	if m.embedFunc != nil {
		return m.embedFunc(ctx, texts)
	}
	// Default: return simple embeddings derived from text length
	records := make([]EmbeddingRecord, len(texts))
	for i, text := range texts {
		embedding := make([]float32, 3)
		embedding[0] = float32(len(text))
		embedding[1] = float32(i)
		embedding[2] = 1.0
		records[i] = EmbeddingRecord{
			Text:      text,
			Embedding: embedding,
		}
	}
	return records, nil
}

func (m *mockEmbedder) GetModel() string  { return "mock" }
func (m *mockEmbedder) GetDimension() int { return 3 }

// mockVectorStore implements VectorStore interface for testing
type mockVectorStore struct {
	records    []ChunkRecord
	searchFunc func(ctx context.Context, queryVector []float32, topK int) ([]SearchMatch, error)
	insertFunc func(ctx context.Context, records []ChunkRecord) error
	deleteAlls int
	flushes    int
}

func (m *mockVectorStore) Insert(ctx context.Context, records []ChunkRecord) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, records)
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockVectorStore) Flush(ctx context.Context) error {
	m.flushes++
	return nil
}

func (m *mockVectorStore) Search(ctx context.Context, queryVector []float32, topK int) ([]SearchMatch, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, queryVector, topK)
	}
	matches := make([]SearchMatch, 0, topK)
	for i, r := range m.records {
		if i >= topK {
			break
		}
		matches = append(matches, SearchMatch{Text: r.Text, Score: 0.9})
	}
	return matches, nil
}

func (m *mockVectorStore) DeleteAll(ctx context.Context) error {
	m.deleteAlls++
	m.records = nil
	return nil
}

func (m *mockVectorStore) Count(ctx context.Context) (int64, error) {
	return int64(len(m.records)), nil
}

func (m *mockVectorStore) Close() error { return nil }

func TestNewRetrieverValidation(t *testing.T) {
	if _, err := NewRetriever(nil, &mockVectorStore{}); err == nil {
		t.Fatal("expected error for nil embedder")
	}
	if _, err := NewRetriever(&mockEmbedder{}, nil); err == nil {
		t.Fatal("expected error for nil vector store")
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r, err := NewRetriever(&mockEmbedder{}, &mockVectorStore{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Retrieve(context.Background(), "", 3); err == nil {
		t.Fatal("expected error for empty query")
	}
	if _, err := r.Retrieve(context.Background(), "rice method", 0); err == nil {
		t.Fatal("expected error for non-positive topK")
	}
}

func TestRetrieveReturnsRankedMatches(t *testing.T) {
	store := &mockVectorStore{
		searchFunc: func(ctx context.Context, queryVector []float32, topK int) ([]SearchMatch, error) {
			return []SearchMatch{
				{Text: "Rest, Ice, Compression, Elevation.", Score: 0.91},
				{Text: "Apply ice for 15-20 minutes.", Score: 0.84},
			}, nil
		},
	}
	r, err := NewRetriever(&mockEmbedder{}, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches, err := r.Retrieve(context.Background(), "what is the RICE method", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Score < matches[1].Score {
		t.Error("matches not in descending score order")
	}
}

func TestRetrieveEmbedFailure(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			return nil, fmt.Errorf("embedding service unavailable")
		},
	}
	r, err := NewRetriever(embedder, &mockVectorStore{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Retrieve(context.Background(), "knee pain", 3); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}
