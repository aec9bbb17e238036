package cmd

import (
	"context"
	"fmt"

	"github.com/restore-pt/clinibot/internal/assistant"
	"github.com/restore-pt/clinibot/internal/config"
	"github.com/restore-pt/clinibot/internal/observability"
	"github.com/restore-pt/clinibot/internal/rag"
)

// pipeline bundles the assistant stack built from configuration.
type pipeline struct {
	turns   *assistant.TurnHandler
	store   *rag.MilvusStore
	metrics *observability.Metrics
}

func (p *pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// buildPipeline wires embedder, vector store, retrieval gate, LLMs, and the
// turn handler. Any failure here is a configuration error: the caller should
// surface it and exit rather than degrade.
func buildPipeline(ctx context.Context, cfg config.Config) (*pipeline, error) {
	embedder, err := rag.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := rag.NewMilvusStore(ctx, rag.DefaultMilvusConfig(cfg.MilvusAddress, cfg.MilvusCollection, cfg.EmbeddingDim))
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	retriever, err := rag.NewRetriever(embedder, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create retriever: %w", err)
	}
	gate := rag.NewGate(retriever, cfg.SimilarityThreshold, cfg.TopK)

	chatLLM, err := assistant.NewOpenAILLM(assistant.LLMConfig{
		Model:  cfg.ChatModel,
		APIKey: cfg.OpenAIAPIKey,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create chat LLM: %w", err)
	}

	rewriteLLM, err := assistant.NewOpenAILLM(assistant.LLMConfig{
		Model:     cfg.RewriteModel,
		APIKey:    cfg.OpenAIAPIKey,
		MaxTokens: 200,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create rewrite LLM: %w", err)
	}

	policy, err := assistant.LoadPromptPolicy(cfg.PersonaFile)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load persona: %w", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	turns, err := assistant.NewTurnHandler(
		assistant.NewQueryFormulator(rewriteLLM),
		gate,
		chatLLM,
		assistant.TurnHandlerOptions{
			Policy:      policy,
			CallTimeout: cfg.CallTimeout,
			Metrics:     metrics,
			Tracer:      observability.LogRecorder{},
		},
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create turn handler: %w", err)
	}

	return &pipeline{
		turns:   turns,
		store:   store,
		metrics: metrics,
	}, nil
}
