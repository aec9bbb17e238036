package rag

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrEmptyRecords     = errors.New("no records provided for insertion")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (e.g., 1536 for text-embedding-3-small)
	IndexType      string // Index type (default: "HNSW")
	MetricType     string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns defaults for a clinic document collection.
func DefaultMilvusConfig(address, collection string, dimension int) MilvusConfig {
	if address == "" {
		address = "localhost:19530"
	}
	if collection == "" {
		collection = "clinic_documents"
	}
	if dimension <= 0 {
		dimension = 1536
	}

	return MilvusConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      dimension,
		IndexType:      "HNSW",
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusStore implements VectorStore interface using Milvus
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore creates a new Milvus vector store instance
// Connects to Milvus and ensures the collection exists with proper schema
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil // Collection already exists
	}

	// Schema for clinic document chunks
	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "chunk_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
		},
	}

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Create HNSW index on embedding field
	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	// Load collection into memory
	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Insert adds chunk records to Milvus
func (m *MilvusStore) Insert(ctx context.Context, records []ChunkRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	chunkIDs := make([]string, len(records))
	texts := make([]string, len(records))
	embeddings := make([][]float32, len(records))

	for i, record := range records {
		if len(record.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: expected %d, got %d for chunk %s",
				ErrInvalidDimension, m.config.Dimension, len(record.Embedding), record.ChunkID)
		}
		chunkIDs[i] = record.ChunkID
		texts[i] = record.Text
		embeddings[i] = record.Embedding
	}

	columns := []entity.Column{
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	return nil
}

// Flush ensures pending inserts are persisted
func (m *MilvusStore) Flush(ctx context.Context) error {
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}
	return nil
}

// Search performs top-K similarity search and returns matches in descending
// score order along with the stored chunk text.
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int) ([]SearchMatch, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	sp, err := entity.NewIndexHNSWSearchParam(64) // ef parameter for search
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	vectors := []entity.Vector{entity.FloatVector(queryVector)}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		"",  // no filter expression
		[]string{"text"},
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []SearchMatch{}, nil
	}

	matches := make([]SearchMatch, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		match := SearchMatch{Score: results[0].Scores[i]}

		for _, field := range results[0].Fields {
			if field.Name() == "text" {
				if col, ok := field.(*entity.ColumnVarChar); ok {
					match.Text = col.Data()[i]
				}
			}
		}

		matches = append(matches, match)
	}

	return matches, nil
}

// DeleteAll removes every chunk from the collection.
func (m *MilvusStore) DeleteAll(ctx context.Context) error {
	// Primary keys are auto-generated non-negative int64s, so this
	// expression covers the whole collection.
	if err := m.client.Delete(ctx, m.config.CollectionName, "", "id >= 0"); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

// Count returns the number of stored chunks.
func (m *MilvusStore) Count(ctx context.Context) (int64, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get stats: %w", err)
	}

	raw, ok := stats["row_count"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected row_count %q: %w", raw, err)
	}
	return n, nil
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
