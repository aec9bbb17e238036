package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	ErrEmptyTexts      = errors.New("no texts provided for embedding")
	ErrMissingAPIKey   = errors.New("OPENAI_API_KEY environment variable not set")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// EmbeddingRecord pairs a chunk of clinic-document text with its embedding
// vector. The same shape serves both ingestion batches and single-query
// embedding.
type EmbeddingRecord struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Embedder turns document chunks and user queries into vectors. Both sides
// of a similarity search must come from the same embedder, or the scores
// are meaningless.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error)
	GetModel() string
	GetDimension() int
}

// OpenAIEmbedder is the production Embedder, backed by OpenAI's embeddings
// endpoint.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates an embedder for the given model and vector
// dimension. An empty apiKey falls back to OPENAI_API_KEY.
func NewOpenAIEmbedder(apiKey, model string, dimension int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

func (e *OpenAIEmbedder) GetModel() string  { return e.model }
func (e *OpenAIEmbedder) GetDimension() int { return e.dimension }

// Embed requests embeddings for all texts in a single API call and returns
// them in input order, regardless of the order the API reports them in.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          e.model,
		Dimensions:     openai.Int(int64(e.dimension)),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	records := make([]EmbeddingRecord, len(resp.Data))
	for _, data := range resp.Data {
		i := int(data.Index)
		if i < 0 || i >= len(texts) {
			return nil, fmt.Errorf("%w: response index %d out of range", ErrEmbeddingFailed, i)
		}

		embedding := make([]float32, len(data.Embedding))
		for j, val := range data.Embedding {
			embedding[j] = float32(val)
		}

		records[i] = EmbeddingRecord{
			Text:      texts[i],
			Embedding: embedding,
		}
	}

	return records, nil
}
