package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Errorf("BindAddr = %q, want :8080", cfg.BindAddr)
	}
	if cfg.SimilarityThreshold != 0.70 {
		t.Errorf("SimilarityThreshold = %v, want 0.70", cfg.SimilarityThreshold)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.TopK)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("CallTimeout = %v, want 10s", cfg.CallTimeout)
	}
	if cfg.MilvusCollection != "clinic_documents" {
		t.Errorf("MilvusCollection = %q", cfg.MilvusCollection)
	}
}

func TestLoadThresholdOverride(t *testing.T) {
	t.Setenv("CLINIBOT_SIMILARITY_THRESHOLD", "0.55")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SimilarityThreshold != 0.55 {
		t.Errorf("SimilarityThreshold = %v, want 0.55", cfg.SimilarityThreshold)
	}
}

func TestLoadInvalidThreshold(t *testing.T) {
	t.Setenv("CLINIBOT_SIMILARITY_THRESHOLD", "1.5")
	_, err := Load()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadUnparseableInt(t *testing.T) {
	t.Setenv("CLINIBOT_TOP_K", "three")
	_, err := Load()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadTimeoutOverride(t *testing.T) {
	t.Setenv("CLINIBOT_CALL_TIMEOUT", "3s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CallTimeout != 3*time.Second {
		t.Errorf("CallTimeout = %v, want 3s", cfg.CallTimeout)
	}
}

func TestValidateTopK(t *testing.T) {
	cfg := Config{SimilarityThreshold: 0.7, TopK: 0, EmbeddingDim: 1536}
	if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
