// Package config loads runtime settings for the CliniBot service from
// environment variables, applying safe defaults where a value is optional.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrConfiguration marks fatal configuration problems (missing credentials,
// unparseable values). Handlers translate it into a 5xx; everything else in
// the pipeline degrades instead.
var ErrConfiguration = errors.New("configuration error")

// Config contains all runtime settings for the assistant service.
type Config struct {
	BindAddr        string
	ShutdownTimeout time.Duration

	OpenAIAPIKey   string
	ChatModel      string
	RewriteModel   string
	EmbeddingModel string
	EmbeddingDim   int

	MilvusAddress    string
	MilvusCollection string

	// SimilarityThreshold is the minimum top-match score for retrieved
	// documents to be used as context. Must be in [0, 1].
	SimilarityThreshold float64

	// TopK is the number of document chunks retrieved per query.
	TopK int

	// CallTimeout bounds each individual call to an external service.
	CallTimeout time.Duration

	// PersonaFile optionally overrides the built-in persona rules.
	PersonaFile string

	MetricsNamespace string
	AllowAnyOrigin   bool
}

// Load reads environment variables and applies defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            envOrDefault("CLINIBOT_BIND_ADDR", ":8080"),
		OpenAIAPIKey:        strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		ChatModel:           envOrDefault("CLINIBOT_CHAT_MODEL", "gpt-4o-mini"),
		RewriteModel:        envOrDefault("CLINIBOT_REWRITE_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      envOrDefault("CLINIBOT_EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDim:        1536,
		MilvusAddress:       envOrDefault("MILVUS_ADDRESS", "localhost:19530"),
		MilvusCollection:    envOrDefault("MILVUS_COLLECTION", "clinic_documents"),
		SimilarityThreshold: 0.70,
		TopK:                3,
		CallTimeout:         10 * time.Second,
		ShutdownTimeout:     15 * time.Second,
		PersonaFile:         strings.TrimSpace(os.Getenv("CLINIBOT_PERSONA_FILE")),
		MetricsNamespace:    envOrDefault("CLINIBOT_METRICS_NAMESPACE", "clinibot"),
		AllowAnyOrigin:      true,
	}

	var err error
	cfg.EmbeddingDim, err = intFromEnv("CLINIBOT_EMBEDDING_DIM", cfg.EmbeddingDim)
	if err != nil {
		return Config{}, err
	}
	cfg.SimilarityThreshold, err = floatFromEnv("CLINIBOT_SIMILARITY_THRESHOLD", cfg.SimilarityThreshold)
	if err != nil {
		return Config{}, err
	}
	cfg.TopK, err = intFromEnv("CLINIBOT_TOP_K", cfg.TopK)
	if err != nil {
		return Config{}, err
	}
	cfg.CallTimeout, err = durationFromEnv("CLINIBOT_CALL_TIMEOUT", cfg.CallTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownTimeout, err = durationFromEnv("CLINIBOT_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("CLINIBOT_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks invariants that cannot be repaired by defaults.
func (c Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: CLINIBOT_SIMILARITY_THRESHOLD must be in [0,1], got %v", ErrConfiguration, c.SimilarityThreshold)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: CLINIBOT_TOP_K must be positive, got %d", ErrConfiguration, c.TopK)
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("%w: CLINIBOT_EMBEDDING_DIM must be positive, got %d", ErrConfiguration, c.EmbeddingDim)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
	}
	return v, nil
}

func floatFromEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
	}
	return v, nil
}

func durationFromEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
	}
	return v, nil
}

func boolFromEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrConfiguration, key, err)
	}
	return v, nil
}
